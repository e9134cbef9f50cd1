package models

// Audio records an uploaded file and its transcription.
type Audio struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Filename      string `json:"filename" gorm:"not null"`
	Transcription string `json:"transcription" gorm:"type:text;not null"`
}

// SupportedAudioFormats is the allow-list of content subtypes accepted by
// the transcription upload.
var SupportedAudioFormats = map[string]struct{}{
	"flac": {}, "m4a": {}, "mp3": {}, "mp4": {}, "mpeg": {},
	"mpga": {}, "oga": {}, "ogg": {}, "wav": {}, "webm": {},
}
