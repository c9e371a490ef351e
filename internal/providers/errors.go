package providers

import "fmt"

// UpstreamError reports a failed fetch from the open-data provider: the
// resource is unknown (404 on the data files) or the provider is
// unreachable. Handlers surface it as a not-found response.
type UpstreamError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream fetch of %s failed: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("upstream fetch of %s failed with status %d", e.Resource, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
