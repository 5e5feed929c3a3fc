package results

import "github.com/sandeepkv93/visionary/internal/model"

// TestMeta describes one screening test that can produce results.
type TestMeta struct {
	ID       string
	Label    string
	Category model.TestCategory
	Short    string
}

var Tests = []TestMeta{
	{ID: "acuity-near", Label: "Near Visual Acuity (Tumbling E)", Category: model.CategoryScore, Short: "Sharpness at 40 cm"},
	{ID: "acuity-distance", Label: "Distance Visual Acuity (Tumbling E)", Category: model.CategoryScore, Short: "Sharpness at 2–3 m"},
	{ID: "contrast", Label: "Contrast Sensitivity (letter threshold)", Category: model.CategoryScore, Short: "Low-contrast seeing"},
	{ID: "color-arrangement", Label: "Color Arrangement (Mini D-15 style)", Category: model.CategoryScore, Short: "Color ordering error score"},
	{ID: "reading-speed", Label: "Reading Speed & Comfort", Category: model.CategoryScore, Short: "WPM + strain"},
	{ID: "npc", Label: "Near Point of Convergence (NPC)", Category: model.CategoryScore, Short: "Alignment endurance (cm)"},
	{ID: "accommodation", Label: "Accommodation Amplitude (Push-Up)", Category: model.CategoryScore, Short: "Focusing power (D)"},
	{ID: "glare", Label: "Glare/Photophobia Threshold", Category: model.CategoryScore, Short: "With vs without glare"},
	{ID: "amsler", Label: "Amsler Grid (macular distortion)", Category: model.CategorySelf, Short: "Mark distortions"},
	{ID: "astigmatism", Label: "Astigmatism Dial (clock test)", Category: model.CategorySelf, Short: "Darker/thicker spokes angle"},
	{ID: "duochrome", Label: "Red-Green Duochrome Balance", Category: model.CategorySelf, Short: "Focus bias after acuity"},
	{ID: "eye-dominance", Label: "Eye Dominance (Miles/Cardhole style)", Category: model.CategorySelf, Short: "Dominant eye"},
	{ID: "visual-field", Label: "Visual Field Screener (suprathreshold)", Category: model.CategorySelf, Short: "Peripheral hit-map"},
	{ID: "pd-ruler", Label: "PD Ruler (manual, calibrated)", Category: model.CategorySelf, Short: "Interpupillary distance"},
	{ID: "stereopsis", Label: "Stereopsis (Depth, Red-Cyan)", Category: model.CategoryAccessory, Short: "Depth threshold (arcsec)"},
	{ID: "worth-4-dot", Label: "Worth 4-Dot (Red-Green)", Category: model.CategoryAccessory, Short: "Fusion / suppression"},
	{ID: "osdi", Label: "OSDI (Dry Eye Symptoms)", Category: model.CategorySelf, Short: "0–100 score (tracking)"},
	{ID: "ciss", Label: "CISS (Convergence Symptoms)", Category: model.CategorySelf, Short: "Raw score (tracking)"},
	{ID: "cvs", Label: "Computer Vision Syndrome / 20-20-20", Category: model.CategorySelf, Short: "Symptoms + habit"},
	{ID: "night-vision", Label: "Night/Low-Light Difficulty", Category: model.CategorySelf, Short: "Checklist trend"},
}

func LookupTest(id string) (TestMeta, bool) {
	for _, t := range Tests {
		if t.ID == id {
			return t, true
		}
	}
	return TestMeta{}, false
}
