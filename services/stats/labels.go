package stats

// travelDocumentLabels remaps travel-document type codes to report labels.
// Unknown codes pass through verbatim.
var travelDocumentLabels = map[string]string{
	"all":                  "All Countries",
	"middleEast":           "Middle East Only",
	"emergencyCertificate": "Emergency Certificate",
	"identityCertificate":  "Identity Certificate",
}

// districtLabels remaps short district codes used on older submissions to
// full district names. Full names already stored pass through verbatim.
var districtLabels = map[string]string{
	"CMB": "Colombo",
	"GMP": "Gampaha",
	"KLT": "Kalutara",
	"KDY": "Kandy",
	"MTL": "Matale",
	"GAL": "Galle",
	"MTR": "Matara",
	"HMB": "Hambantota",
	"JAF": "Jaffna",
	"VAV": "Vavuniya",
	"TRI": "Trincomalee",
	"BAT": "Batticaloa",
	"ANU": "Anuradhapura",
	"KUR": "Kurunegala",
	"RAT": "Ratnapura",
	"BAD": "Badulla",
}

func travelDocumentLabel(code string) string {
	if label, ok := travelDocumentLabels[code]; ok {
		return label
	}
	return code
}

func districtLabel(code string) string {
	if label, ok := districtLabels[code]; ok {
		return label
	}
	return code
}
