package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedirectTarget(t *testing.T) {
	const frontend = "https://hub.example"

	cases := []struct {
		name      string
		returnURL string
		want      string
	}{
		{"relative path", "/profile", "https://hub.example/profile"},
		{"root", "/", "https://hub.example/"},
		{"absolute allowed origin", "https://hub.example/profile", "https://hub.example/profile"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, redirectTarget(frontend, tc.returnURL))
		})
	}
}
