package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderXRequestID = "X-Request-ID"

	// Database table names
	TableInventoryEntities = "inventory_entities"

	// Lock key prefixes, one per allocation scope
	LockPrefixVLAN    = "invprov:lock:vlan:"
	LockPrefixSlot    = "invprov:lock:slot:"
	LockPrefixCounter = "invprov:lock:counter:"
)
