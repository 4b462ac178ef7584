package delivery

import (
	"context"

	"currycrave/internal/geocoding"
	"currycrave/internal/pincode"
	"currycrave/internal/structs"
)

// locator resolves a pincode from the directory first and falls back to the
// gateway on a miss.
type locator struct {
	directory pincode.Directory
	gateway   geocoding.Gateway
}

// locate returns the best known record for code. With refetchUnlocated set, a
// cached record that has no coordinates is retried through the gateway.
func (l locator) locate(ctx context.Context, code string, refetchUnlocated bool) (structs.PincodeRecord, bool) {
	cached, ok := l.directory.Lookup(code)
	if ok && (cached.Located() || !refetchUnlocated) {
		return cached, true
	}

	if rec, found := l.gateway.Resolve(ctx, code); found {
		return rec, true
	}
	return cached, ok
}
