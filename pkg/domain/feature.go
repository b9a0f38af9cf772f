package domain

// FeatureName identifies one slot of the feature schema.
type FeatureName string

// Names of the feature slots, spelled exactly like the columns of the
// dataset the classifier was trained on.
const (
	UsingIP             FeatureName = "UsingIP"
	LongURL             FeatureName = "LongURL"
	ShortURL            FeatureName = "ShortURL"
	SymbolAt            FeatureName = "Symbol@"
	Redirecting         FeatureName = "Redirecting//"
	PrefixSuffix        FeatureName = "PrefixSuffix-"
	SubDomains          FeatureName = "SubDomains"
	HTTPS               FeatureName = "HTTPS"
	DomainRegLen        FeatureName = "DomainRegLen"
	Favicon             FeatureName = "Favicon"
	NonStdPort          FeatureName = "NonStdPort"
	HTTPSDomainURL      FeatureName = "HTTPSDomainURL"
	RequestURL          FeatureName = "RequestURL"
	AnchorURL           FeatureName = "AnchorURL"
	LinksInScriptTags   FeatureName = "LinksInScriptTags"
	ServerFormHandler   FeatureName = "ServerFormHandler"
	InfoEmail           FeatureName = "InfoEmail"
	AbnormalURL         FeatureName = "AbnormalURL"
	WebsiteForwarding   FeatureName = "WebsiteForwarding"
	StatusBarCust       FeatureName = "StatusBarCust"
	DisableRightClick   FeatureName = "DisableRightClick"
	UsingPopupWindow    FeatureName = "UsingPopupWindow"
	IframeRedirection   FeatureName = "IframeRedirection"
	AgeofDomain         FeatureName = "AgeofDomain"
	DNSRecording        FeatureName = "DNSRecording"
	WebsiteTraffic      FeatureName = "WebsiteTraffic"
	PageRank            FeatureName = "PageRank"
	GoogleIndex         FeatureName = "GoogleIndex"
	LinksPointingToPage FeatureName = "LinksPointingToPage"
	StatsReport         FeatureName = "StatsReport"
)

// FeatureCount is the number of slots in every feature vector.
const FeatureCount = 30

// Schema is the canonical slot order. It must match the column order used
// when the classifier was trained.
var Schema = [FeatureCount]FeatureName{ //nolint: gochecknoglobals
	UsingIP, LongURL, ShortURL, SymbolAt, Redirecting, PrefixSuffix, SubDomains,
	HTTPS, DomainRegLen, Favicon, NonStdPort, HTTPSDomainURL, RequestURL, AnchorURL,
	LinksInScriptTags, ServerFormHandler, InfoEmail, AbnormalURL, WebsiteForwarding,
	StatusBarCust, DisableRightClick, UsingPopupWindow, IframeRedirection, AgeofDomain,
	DNSRecording, WebsiteTraffic, PageRank, GoogleIndex, LinksPointingToPage, StatsReport,
}

// Placeholders lists the slots that have no data source and always carry
// the default value. They stay in the schema so vectors remain compatible
// with the already trained model.
var Placeholders = []FeatureName{ //nolint: gochecknoglobals
	StatusBarCust, DisableRightClick, UsingPopupWindow, WebsiteTraffic,
	PageRank, GoogleIndex, LinksPointingToPage, StatsReport,
}

// schemaIndex maps a feature name to its slot.
var schemaIndex = func() map[FeatureName]int { //nolint: gochecknoglobals
	m := make(map[FeatureName]int, FeatureCount)
	for i, n := range Schema {
		m[n] = i
	}

	return m
}()

// IndexOf returns the slot of name in the schema.
func IndexOf(name FeatureName) (int, bool) {
	i, ok := schemaIndex[name]

	return i, ok
}

// SchemaNames returns the schema as plain strings, e.g. for model column checks.
func SchemaNames() []string {
	out := make([]string, FeatureCount)
	for i, n := range Schema {
		out[i] = string(n)
	}

	return out
}

// FeatureVector is the numeric encoding consumed by the classifier. Being an
// array, its length is always FeatureCount.
type FeatureVector [FeatureCount]int

// Get returns the value stored for name, or 0 for names outside the schema.
func (v FeatureVector) Get(name FeatureName) int {
	if i, ok := IndexOf(name); ok {
		return v[i]
	}

	return 0
}

// Floats converts the vector for models that work on float inputs.
func (v FeatureVector) Floats() []float64 {
	out := make([]float64, FeatureCount)
	for i, x := range v {
		out[i] = float64(x)
	}

	return out
}
