package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/mailings/internal/core"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &core.ValidationError{Msg: "bad email"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("get recipient x: %w", core.ErrNotFound), http.StatusNotFound},
		{"forbidden", core.ErrForbidden, http.StatusForbidden},
		{"finished", fmt.Errorf("dispatch: %w", core.ErrMailingFinished), http.StatusConflict},
		{"in progress", core.ErrDispatchInProgress, http.StatusConflict},
		{"unknown", errors.New("connection lost"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeErrorResponse(rec)["error"])
		})
	}
}

func TestLastID(t *testing.T) {
	type item struct{ ID string }
	id := func(i item) string { return i.ID }

	assert.Equal(t, "", lastID([]item{{"a"}, {"b"}}, id, false))
	assert.Equal(t, "b", lastID([]item{{"a"}, {"b"}}, id, true))
	assert.Equal(t, "", lastID(nil, id, true))
}
