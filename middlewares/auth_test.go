package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	key := "plop"
	router := mux.NewRouter()
	router.Use(Auth(key))
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Hello, client")
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	res, err := http.Get(ts.URL)
	assert.NoError(t, err)
	assert.Equal(t, 401, res.StatusCode)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"owner": "bob",
	})
	blob, err := token.SignedString([]byte(key))
	assert.NoError(t, err)
	r, err := http.NewRequest("GET", ts.URL, nil)
	assert.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+blob)
	res, err = http.DefaultClient.Do(r)
	assert.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
}
