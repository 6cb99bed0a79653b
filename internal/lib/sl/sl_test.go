package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/book-club/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("session store unavailable"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("session store unavailable"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestOp(t *testing.T) {
	attr := sl.Op("handlers.auth.login")
	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "handlers.auth.login", attr.Value.String())
}
