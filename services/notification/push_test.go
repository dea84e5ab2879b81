package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"servswap/models"

	firebase "firebase.google.com/go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// rewriteHost sends every request to the test server instead of FCM.
type rewriteHost struct{ target *url.URL }

func (rt rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

const unregisteredBody = `{"error":{"code":404,"status":"NOT_FOUND","message":"Requested entity was not found.",
"details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`

func TestNotifyPrunesUnregisteredTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message struct {
				Token string `json:"token"`
			} `json:"message"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Message.Token == "tok2" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, unregisteredBody)
			return
		}
		fmt.Fprintf(w, `{"name":"projects/servswap-test/messages/%s"}`, req.Message.Token)
	}))
	defer srv.Close()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: "servswap-test"},
		option.WithHTTPClient(&http.Client{Transport: rewriteHost{target: target}}))
	require.NoError(t, err)
	client, err := app.Messaging(ctx)
	require.NoError(t, err)

	svc, repo := newService(nil)
	svc.Push = client

	require.NoError(t, svc.Notify(ctx, "push-on", models.NotifyMessage, "New message", "hi", nil))
	assert.Len(t, repo.All("push-on"), 1)

	u, err := svc.Users.GetByID(ctx, "push-on")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok1"}, u.FCMTokens)
}
