package sentiment

// lexicon holds per-word polarity, tilted toward clinical vocabulary.
var lexicon = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "better": 0.5, "best": 1.0,
	"improved": 0.6, "improving": 0.6, "improvement": 0.6, "improve": 0.5,
	"stable": 0.5, "normal": 0.4, "healthy": 0.7, "fine": 0.4, "well": 0.4,
	"recovered": 0.7, "recovering": 0.6, "recovery": 0.5, "resolved": 0.6,
	"comfortable": 0.5, "clear": 0.3, "fit": 0.4, "happy": 0.8, "positive": 0.2,
	"responsive": 0.4, "controlled": 0.4, "successful": 0.8, "effective": 0.6,
	"strong": 0.4, "alert": 0.3, "calm": 0.3, "mild": 0.1, "benign": 0.5,
	"relieved": 0.5, "relief": 0.4, "tolerating": 0.3, "tolerated": 0.3,
	"unremarkable": 0.3, "satisfactory": 0.5, "active": 0.2, "independent": 0.3,

	// negative
	"bad": -0.7, "worse": -0.6, "worst": -1.0, "poor": -0.4, "severe": -0.7,
	"critical": -0.8, "acute": -0.4, "chronic": -0.3, "serious": -0.5,
	"pain": -0.5, "painful": -0.6, "ache": -0.4, "aching": -0.4,
	"fever": -0.4, "infection": -0.5, "infected": -0.5, "bleeding": -0.6,
	"deteriorating": -0.8, "deteriorated": -0.8, "worsening": -0.7,
	"unstable": -0.7, "abnormal": -0.5, "weak": -0.4, "weakness": -0.4,
	"tired": -0.3, "fatigue": -0.3, "nausea": -0.4, "vomiting": -0.5,
	"dizzy": -0.4, "dizziness": -0.4, "swelling": -0.4, "swollen": -0.4,
	"difficulty": -0.4, "distress": -0.6, "failure": -0.8, "failed": -0.6,
	"emergency": -0.6, "urgent": -0.5, "complication": -0.5, "complications": -0.5,
	"sick": -0.6, "ill": -0.5, "malignant": -0.8, "tumor": -0.5, "lesion": -0.3,
	"anxious": -0.4, "depressed": -0.6, "confused": -0.4, "unconscious": -0.8,
	"sad": -0.5, "terrible": -1.0, "awful": -1.0, "dangerous": -0.6,
	"persistent": -0.3, "recurrent": -0.3, "elevated": -0.2, "low": -0.1,
	"shortness": -0.4, "wheeze": -0.3, "wheezing": -0.3, "cough": -0.2,
}

// intensifiers scale the word that follows them.
var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "really": 1.3, "highly": 1.3,
	"markedly": 1.4, "significantly": 1.4, "quite": 1.1, "slightly": 0.5,
	"somewhat": 0.7, "mildly": 0.6, "barely": 0.4,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "denies": true,
	"denied": true, "none": true, "nor": true, "n't": true, "cannot": true,
}
