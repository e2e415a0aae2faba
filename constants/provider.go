package constants

// Provider names as reported in ExtractionResult.provider.
const (
	ProviderCloud = "cloud"
	ProviderLocal = "local"
	ProviderMock  = "mock"
	ProviderAuto  = "auto"
)

// DefaultProviderOrder is the fallback chain tried in auto mode.
var DefaultProviderOrder = []string{ProviderCloud, ProviderLocal}
