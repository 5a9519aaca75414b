// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
)

type errorResponse struct {
	Error    string       `json:"error"`
	Problems []problemDTO `json:"problems,omitempty"`
}

type problemDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func toProblemDTOs(problems []checkout.Problem) []problemDTO {
	out := make([]problemDTO, 0, len(problems))
	for _, p := range problems {
		out = append(out, problemDTO{Field: p.Field, Message: p.Message})
	}
	return out
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeProblems(c *gin.Context, problems []checkout.Problem) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error:    "checkout validation failed",
		Problems: toProblemDTOs(problems),
	})
}

func writeOrderError(c *gin.Context, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblems(c, verr.Problems)
	case errors.Is(err, order.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, settings.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, "pricing policy is temporarily unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
