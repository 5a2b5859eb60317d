package services

// Download encoding preference, evaluated in order; the first itag present
// in the metadata wins. 22 is 720p mp4 with muxed audio, 137 is 1080p
// video-only, 18 is the 360p mp4 fallback.
var encodingPreference = []int{22, 137, 18}

// SelectEncoding picks the download format for a submission. Selection is
// deterministic: the same format list always yields the same choice.
func SelectEncoding(formats []Format) (*Format, error) {
	for _, itag := range encodingPreference {
		for i := range formats {
			if formats[i].Itag == itag {
				return &formats[i], nil
			}
		}
	}
	return nil, ErrNoAcceptableEncoding
}
