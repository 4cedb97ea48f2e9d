package session

import (
	"net/http"

	"github.com/draze/draze-cli/internal/common/apperrors"
)

var (
	ErrSession          apperrors.Error = apperrors.New("session error")
	ErrNotAuthenticated apperrors.Error = ErrSession.New("not logged in").SetStatusCode(http.StatusUnauthorized)
	ErrTokenExpired     apperrors.Error = ErrNotAuthenticated.New("session expired, log in again")
	ErrEmptyToken       apperrors.Error = ErrSession.New("token must not be empty")
	ErrStoreIO          apperrors.Error = ErrSession.New("unable to access session store")
	ErrNoUserID         apperrors.Error = ErrSession.New("profile did not return a user id")
)
