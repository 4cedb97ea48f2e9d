package fetch

import (
	"github.com/draze/draze-cli/internal/common/apperrors"
	"github.com/draze/draze-cli/internal/common/httpclient"
)

var (
	ErrFetch         apperrors.Error = apperrors.New("fetch error")
	ErrRequestFailed apperrors.Error = ErrFetch.New(httpclient.GenericFailure)
	ErrSuperseded    apperrors.Error = ErrFetch.New("request superseded by a newer one")
)
