package domain

// Label is the verdict attached to a classified URL.
type Label string

const (
	// LabelLegitimate is assigned when the classifier predicts class 1.
	LabelLegitimate Label = "Legitimate"
	// LabelPhishing is assigned for any other predicted class (0 or -1).
	LabelPhishing Label = "Phishing"
	// LabelError is reserved for links whose fetch, resolution or
	// classification failed.
	LabelError Label = "Error"
)

// LegitimateClass is the class value the training data uses for legitimate sites.
const LegitimateClass = 1

// LabelFromClass maps a raw classifier class to a label.
func LabelFromClass(class int) Label {
	if class == LegitimateClass {
		return LabelLegitimate
	}

	return LabelPhishing
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelLegitimate, LabelPhishing, LabelError:
		return true
	default:
		return false
	}
}
