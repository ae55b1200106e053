package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/citypulse/events-api/internal/api/handler/v1/response"
	"github.com/citypulse/events-api/internal/api/middleware"
	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext resolves the caller set by the JWT middleware.
// A nil user with a nil error means the request is anonymous.
func getUserFromContext(ctx *gin.Context, svc UserService) (*domain.User, *response.Err) {
	raw, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return nil, nil
	}

	userID, ok := raw.(uint)
	if !ok {
		return nil, response.ErrInternalServerError(fmt.Errorf("unexpected user ID type %T in context", raw))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, response.ErrUnauthorized("unknown user")
		}

		return nil, response.ErrInternalServerError(fmt.Errorf("v1.getUserFromContext -> svc.GetUser -> %w", err))
	}

	return &user, nil
}

// requireStaff yields 403 for anonymous and non-staff callers alike.
func requireStaff(ctx *gin.Context, svc UserService) (*domain.User, *response.Err) {
	user, respErr := getUserFromContext(ctx, svc)
	if respErr != nil {
		return nil, respErr
	}

	if user == nil || !user.IsStaff() {
		return nil, response.ErrPermissionDenied(errors.New("staff privilege required"))
	}

	return user, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %v %q", name, ctx.Param(name))
	}

	return uint(id), nil
}
