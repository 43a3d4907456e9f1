package storage

import "clipforge/internal/ports"

// Provider is the storage contract used across API and worker. It is an alias
// to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
