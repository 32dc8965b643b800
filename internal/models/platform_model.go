package models

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformYoutube   = "youtube"
	PlatformTiktok    = "tiktok"
)

var Platforms = []string{PlatformFacebook, PlatformInstagram, PlatformYoutube, PlatformTiktok}

func IsValidPlatform(p string) bool {
	for _, valid := range Platforms {
		if valid == p {
			return true
		}
	}
	return false
}
