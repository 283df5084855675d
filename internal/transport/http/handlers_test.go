package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/19tp01/very-terry-game/internal/app"
	"github.com/19tp01/very-terry-game/internal/blob"
	"github.com/19tp01/very-terry-game/internal/config"
	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blobs, err := blob.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	hub := app.NewRoomHub(store.NewMemory(), blobs, 4, domain.DefaultTimerSettings(), logger)
	t.Cleanup(hub.Close)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Game.HostPassword = "sekret"

	s := NewServer(cfg, hub, blobs, logger)

	mux := http.NewServeMux()
	s.setupRoutes(mux)
	ts := httptest.NewServer(s.middleware(mux))
	t.Cleanup(ts.Close)
	return ts
}

func decodeResponse(t *testing.T, resp *http.Response) *Response {
	t.Helper()
	defer resp.Body.Close()

	var r Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return &r
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	r := decodeResponse(t, resp)
	assert.True(t, r.Success)
}

func TestHandleCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)

	r := decodeResponse(t, resp)
	require.True(t, r.Success)

	data := r.Data.(map[string]interface{})
	code := data["roomCode"].(string)
	assert.Len(t, code, 4)

	// The fresh room reports lobby defaults
	resp, err = http.Get(ts.URL + "/api/rooms/" + code)
	require.NoError(t, err)
	r = decodeResponse(t, resp)
	require.True(t, r.Success)

	room := r.Data.(map[string]interface{})
	assert.Equal(t, "lobby", room["mode"])
	assert.Equal(t, "photo", room["phase"])
}

func TestHandleRoomExists(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/rooms/ZZZZ/exists")
	require.NoError(t, err)

	r := decodeResponse(t, resp)
	require.True(t, r.Success)
	assert.Equal(t, false, r.Data.(map[string]interface{})["exists"])
}

func TestHandleHostLogin(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(HostLoginRequest{Password: "sekret"})
	resp, err := http.Post(ts.URL+"/api/host/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	r := decodeResponse(t, resp)
	require.True(t, r.Success)
	assert.Equal(t, "sekret", r.Data.(map[string]interface{})["token"])
}

func TestHandleHostLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(HostLoginRequest{Password: "nope"})
	resp, err := http.Post(ts.URL+"/api/host/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	r := decodeResponse(t, resp)
	assert.False(t, r.Success)
	assert.Equal(t, "INVALID_PASSWORD", r.Error.Code)
}

func TestHandleUploadPhoto(t *testing.T) {
	ts := newTestServer(t)

	// Need a room and a player first
	resp, err := http.Post(ts.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)
	r := decodeResponse(t, resp)
	code := r.Data.(map[string]interface{})["roomCode"].(string)

	// Join via the session directly is not reachable over plain HTTP, so
	// upload as a slideshow photo, which needs no player record
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "party.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpegbytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("category", "slideshow"))
	require.NoError(t, mw.Close())

	resp, err = http.Post(ts.URL+"/api/rooms/"+code+"/photos", mw.FormDataContentType(), &buf)
	require.NoError(t, err)

	r = decodeResponse(t, resp)
	require.True(t, r.Success)
	data := r.Data.(map[string]interface{})
	photoURL := data["photoUrl"].(string)
	assert.Contains(t, photoURL, "/media/"+code+"/")
	assert.Contains(t, data["thumbnailUrl"].(string), "_200x200.webp")

	// The slideshow listing returns the upload
	resp, err = http.Get(ts.URL + "/api/rooms/" + code + "/slideshow")
	require.NoError(t, err)
	r = decodeResponse(t, resp)
	require.True(t, r.Success)
	photos := r.Data.(map[string]interface{})["photos"].([]interface{})
	assert.Len(t, photos, 1)
}

func TestHandleDeleteSlideshow(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "party.jpg")
	require.NoError(t, err)
	fw.Write([]byte("jpegbytes"))
	require.NoError(t, mw.WriteField("category", "slideshow"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/rooms/ABCD/photos", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.True(t, decodeResponse(t, resp).Success)

	resp, err = http.Get(ts.URL + "/api/rooms/ABCD/slideshow")
	require.NoError(t, err)
	r := decodeResponse(t, resp)
	photos := r.Data.(map[string]interface{})["photos"].([]interface{})
	require.Len(t, photos, 1)
	photoID := photos[0].(map[string]interface{})["id"].(string)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/rooms/ABCD/slideshow/"+photoID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.True(t, decodeResponse(t, resp).Success)

	resp, err = http.Get(ts.URL + "/api/rooms/ABCD/slideshow")
	require.NoError(t, err)
	r = decodeResponse(t, resp)
	assert.Empty(t, r.Data.(map[string]interface{})["photos"])
}

func TestHandleUploadPhoto_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "x.jpg")
	require.NoError(t, err)
	fw.Write([]byte("bytes"))
	require.NoError(t, mw.WriteField("category", "avatar"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/rooms/ABCD/photos", mw.FormDataContentType(), &buf)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	r := decodeResponse(t, resp)
	assert.Equal(t, "INVALID_UPLOAD", r.Error.Code)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg", "x.png"))
	assert.Equal(t, ".png", extensionFor("image/png", "x"))
	assert.Equal(t, ".webp", extensionFor("image/webp", ""))
	assert.Equal(t, ".gif", extensionFor("", "anim.gif"))
	assert.Equal(t, ".jpg", extensionFor("", ""))
}
