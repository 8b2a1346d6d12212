// Package advertiser keeps a beacon advertisement on the air. The Broadcaster
// decides what to advertise and when; an Advertiser puts it on a medium.
//
//go:generate mockgen -package mockadvertiser -source=interface.go -destination=mock/mockadvertiser.go *
package advertiser

import (
	"context"
	"uribeacon/pkg/domain"
)

// Advertiser publishes advertisements. Advertise replaces whatever was being
// advertised before; Stop ends advertising and is a no-op when idle.
type Advertiser interface {
	Advertise(ctx context.Context, ad domain.Advertisement) error
	Stop(ctx context.Context) error
}
