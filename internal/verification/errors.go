package verification

import (
	"net/http"

	"github.com/draze/draze-cli/internal/common/apperrors"
)

var (
	ErrVerification      apperrors.Error = apperrors.New("verification error")
	ErrIllegalTransition apperrors.Error = ErrVerification.New("status change not allowed").SetStatusCode(http.StatusConflict)
)
