package network

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHttpClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	})
	mux.HandleFunc("/timeout", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond * 500)
	})
	httpSrv := httptest.NewServer(mux)
	defer httpSrv.Close()
	httpsSrv := httptest.NewTLSServer(mux)
	defer httpsSrv.Close()

	client := NewHttpClient(time.Millisecond * 100)

	resp, err := client.Get(httpSrv.URL + "/ok")
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, 200, resp.StatusCode, "should return OK status")
	resp.Body.Close()

	resp, err = client.Get(httpsSrv.URL + "/ok")
	assert.NoError(t, err, "should accept self-signed certificate")
	assert.Exactly(t, 200, resp.StatusCode, "should return OK status")
	resp.Body.Close()

	resp, err = client.Get(httpSrv.URL + "/timeout")
	assert.Nil(t, resp, "should return empty reposnse")
	assert.Exactly(t, Timeout, GetErrType(err), "should return timeout error")

	addr := httpSrv.Listener.Addr().String()
	httpSrv.Close()
	resp, err = client.Get("http://" + addr + "/ok")
	assert.Nil(t, resp, "should return empty reposnse")
	assert.Exactly(t, Refused, GetErrType(err), "should refuse connections to the closed server")
}
