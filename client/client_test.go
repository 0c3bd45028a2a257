package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsdesk/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login/", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "reader@example.com", creds["email"])

		respond(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"token": "jwt-token",
				"user":  map[string]string{"id": "u1", "username": "reader"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	res, err := c.Login(context.Background(), "reader@example.com", "geheim123")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", res.Token)
	assert.Equal(t, "reader", res.User.Username)
	assert.Equal(t, "jwt-token", c.Token)
}

func TestServerMessagePassedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Image size too large. Please use images under 5MB.",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	_, err := c.CreateArticle(context.Background(), editor.Submission{Title: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Image size too large. Please use images under 5MB.", apiErr.Error())
}

func TestRequestsCarryBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		respond(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"liked": true, "likes_count": 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	c.Token = "jwt-token"

	liked, likes, err := c.AddLike(context.Background(), "a1", "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 3, likes)
}

func TestUploadSendsMultipartAndDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/articles/upload-image/", r.URL.Path)
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "bild.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		respond(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"url":       "https://cdn.example/articles/x.png",
				"public_id": "articles/x.png",
				"width":     640,
				"height":    480,
				"format":    "png",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	img, err := c.Upload(context.Background(), editor.ImageFile{
		Name:        "bild.png",
		ContentType: "image/png",
		Size:        14,
		Data:        strings.NewReader("not a real png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/articles/x.png", img.URL)
	assert.Equal(t, "articles/x.png", img.PublicID)
	assert.Equal(t, 640, img.Width)
}

func TestUnreadableBodyYieldsGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	_, err := c.GetArticle(context.Background(), "a1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Something went wrong. Try again.", apiErr.Error())
}

func TestNetworkFailureIsLogged(t *testing.T) {
	// Server sofort wieder schließen, damit der Request scheitert.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	c := New(srv.URL, zap.New(core))

	_, err := c.GetArticle(context.Background(), "a1")
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*APIError))

	entries := logs.FilterMessage("Request nicht zustellbar").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/articles/get-by-id/?id=a1", entries[0].ContextMap()["path"])
}
