package transfer

type SettingsUpdate struct {
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
	Category string `json:"category" validate:"max=100"`
	Tone     string `json:"tone" validate:"max=50"`
}
