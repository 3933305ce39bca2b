package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/depicts-editor/internal/wikimedia"
)

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/add_claim", handler.AddClaim)
	return router
}

func postClaim(t *testing.T, router *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/add_claim", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newWriter(endpoint string) *wikimedia.ClaimWriter {
	requester := wikimedia.NewRequester("DepictsEditor-test/0.0", 5*time.Second)
	return wikimedia.NewClaimWriter(requester, endpoint, "BotUser", "BotPass")
}

// fakeAuthedCommons 按登录流程应答，最后交给 onCreateClaim
func fakeAuthedCommons(onCreateClaim http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			switch r.URL.Query().Get("type") {
			case "login":
				fmt.Fprint(w, `{"query":{"tokens":{"logintoken":"LOGIN"}}}`)
			case "csrf":
				fmt.Fprint(w, `{"query":{"tokens":{"csrftoken":"CSRF"}}}`)
			}
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("action") == "login" {
			fmt.Fprint(w, `{"login":{"result":"Success"}}`)
			return
		}
		onCreateClaim(w, r)
	}
}

func TestAddClaim_MissingFieldsNeverCallUpstream(t *testing.T) {
	var upstreamCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upstreamCalls, 1)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	router := setupRouter(NewHandler(newWriter(server.URL), true))

	for _, body := range []map[string]any{
		{},
		{"mid": "M123"},
		{"qid": "Q146"},
		{"mid": "", "qid": "Q146"},
	} {
		w := postClaim(t, router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
		assert.Contains(t, w.Body.String(), "error")
	}

	assert.Zero(t, atomic.LoadInt64(&upstreamCalls))
}

func TestAddClaim_MissingCredentials(t *testing.T) {
	var upstreamCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upstreamCalls, 1)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	router := setupRouter(NewHandler(newWriter(server.URL), false))

	w := postClaim(t, router, map[string]any{"mid": "M123", "qid": "Q146"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "credentials")
	assert.Zero(t, atomic.LoadInt64(&upstreamCalls))
}

func TestAddClaim_Success(t *testing.T) {
	server := httptest.NewServer(fakeAuthedCommons(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":1,"claim":{"id":"M123$abc"}}`)
	}))
	defer server.Close()

	router := setupRouter(NewHandler(newWriter(server.URL), true))

	w := postClaim(t, router, map[string]any{"mid": "M123", "qid": "Q146"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Success int `json:"success"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Success)
}

func TestAddClaim_RelaysUpstreamError(t *testing.T) {
	server := httptest.NewServer(fakeAuthedCommons(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"no-such-entity","info":"Could not find an entity with that ID."}}`)
	}))
	defer server.Close()

	router := setupRouter(NewHandler(newWriter(server.URL), true))

	w := postClaim(t, router, map[string]any{"mid": "M123", "qid": "Q146"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not find an entity")
}

func TestAddClaim_UpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	router := setupRouter(NewHandler(newWriter(server.URL), true))

	w := postClaim(t, router, map[string]any{"mid": "M123", "qid": "Q146"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
