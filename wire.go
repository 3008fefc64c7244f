package clustermux

// Wire-level event sizes, in bytes, per operation. These mirror the fixed
// struct layouts in the types subpackage (see types/types.go) and the real
// TigerBeetle wire protocol referenced by original_source/. Declared
// separately from the types subpackage's struct definitions to keep the
// core dependency-free of any particular request/response struct layout;
// only sizes matter for batching and demultiplexing.
const (
	idEventSize              = 16 // a bare 128-bit id, for lookups
	accountEventSize         = 128
	transferEventSize        = 128
	accountFilterEventSize   = 64
	queryFilterEventSize     = 64
	createAccountsResultSize = 8 // {index uint32, result uint32}
	createTransfersResultSize = 8
)
