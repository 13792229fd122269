package cellosaurus

import (
	"net/http"

	"github.com/scienceol/cellbank/pkg/repo"
)

// Client exposes the underlying http client for transport mocks.
func Client(r repo.CellosaurusRepo) *http.Client {
	if impl, ok := r.(*cellosaurusImpl); ok {
		return impl.client.GetClient()
	}
	return nil
}
