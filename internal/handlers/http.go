package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// APIFunc is the signature of every API Gateway handler in this package.
type APIFunc func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// maxBodyBytes caps request bodies on the local server.
const maxBodyBytes = 1 << 20

// ServeHTTP adapts an API Gateway handler to net/http. Named wildcards of the
// mux pattern are passed through as path parameters.
func ServeHTTP(h APIFunc, pathParams ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		request := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			Headers:               make(map[string]string, len(r.Header)),
			QueryStringParameters: make(map[string]string),
			PathParameters:        make(map[string]string, len(pathParams)),
			Body:                  string(body),
		}
		for name := range r.Header {
			request.Headers[name] = r.Header.Get(name)
		}
		for name, values := range r.URL.Query() {
			if len(values) > 0 {
				request.QueryStringParameters[name] = values[0]
			}
		}
		for _, name := range pathParams {
			request.PathParameters[name] = r.PathValue(name)
		}

		resp, err := h(r.Context(), request)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}
