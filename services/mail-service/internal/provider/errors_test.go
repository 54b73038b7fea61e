package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid credentials text", errors.New("Invalid Credentials"), AuthExpired},
		{"expected oauth text", errors.New("Request is missing required authentication credential. Expected OAuth 2 access token."), AuthExpired},
		{"status 401", &googleapi.Error{Code: http.StatusUnauthorized, Message: "Login Required"}, AuthExpired},
		{"status 404", &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}, NotFound},
		{"not found text", errors.New("thread not found"), NotFound},
		{"status 500", &googleapi.Error{Code: http.StatusInternalServerError, Message: "Backend Error"}, Upstream},
		{"network timeout", &url.Error{Op: "Get", URL: "https://gmail.googleapis.com/gmail/v1/users/me/messages", Err: context.DeadlineExceeded}, Upstream},
		{"token endpoint 401", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}}, AuthExpired},
		{"wrapped status", fmt.Errorf("list: %w", &googleapi.Error{Code: http.StatusNotFound}), NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", tt.err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyKeepsKind(t *testing.T) {
	inner := &Error{Kind: NotFound, Op: "get message", Err: errors.New("Invalid id value")}
	err := Classify("list messages", inner)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAuthExpired(err))
	assert.Equal(t, "list messages: get message: Invalid id value", err.Error())
}

func TestKindHelpers(t *testing.T) {
	assert.Nil(t, Classify("op", nil))
	assert.False(t, IsAuthExpired(nil))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, Upstream, KindOf(errors.New("unclassified")))

	wrapped := fmt.Errorf("handler: %w", Classify("op", errors.New("Invalid Credentials")))
	assert.True(t, IsAuthExpired(wrapped))
	assert.Equal(t, "auth_expired", AuthExpired.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "upstream", Upstream.String())
}
