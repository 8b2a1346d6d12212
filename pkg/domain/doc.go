// Package domain contains the values shared between the broadcaster, the
// HTTP API and the CLI. They carry no behaviour and no infrastructure
// dependencies.
package domain
