package mutate

import (
	"github.com/draze/draze-cli/internal/common/apperrors"
	"github.com/draze/draze-cli/internal/common/httpclient"
)

var (
	ErrMutation      apperrors.Error = apperrors.New("mutation error")
	ErrRequestFailed apperrors.Error = ErrMutation.New(httpclient.GenericFailure)
	ErrBusy          apperrors.Error = ErrMutation.New("a submission is already in progress")
	ErrRefreshFailed apperrors.Error = ErrMutation.New("saved, but the list could not be refreshed")
	ErrInvalidMethod apperrors.Error = ErrMutation.New("mutations must use POST, PUT, PATCH or DELETE")
)
