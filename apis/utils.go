package apis

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

var (
	errMissingAccount = ledger.InvalidError("missing account")
	errBadVersion     = ledger.InvalidError("bad version")
	errBadIndex       = ledger.InvalidError("bad payout index")
	errBadAction      = ledger.InvalidError("malformed action")
)

// statusOf maps the ledger error classes onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case ledger.IsPermission(err):
		return http.StatusForbidden
	case ledger.IsNotFound(err):
		return http.StatusNotFound
	case ledger.IsState(err):
		return http.StatusConflict
	case ledger.IsInvalid(err):
		return http.StatusBadRequest
	case ledger.IsArithmetic(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	errStr := err.Error()
	c.JSON(statusOf(err), Response{Error: &errStr})
}

func ok(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, Response{Result: result})
}

func accountParam(value string) (ledger.Address, error) {
	account := ledger.NewAddress(value)
	if account == "" {
		return "", errMissingAccount
	}
	return account, nil
}

func versionParam(value string) (ledger.Version, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errBadVersion, "%q", value)
	}
	return v, nil
}

func indexParam(value string) (int, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(errBadIndex, "%q", value)
	}
	return i, nil
}
