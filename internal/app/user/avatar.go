package user

import (
	"fmt"
	"net/url"
)

// DefaultAvatarStyle is the dicebear sprite collection used for generated avatars.
const DefaultAvatarStyle = "human"

// AvatarURL derives a deterministic avatar image URL from the nickname.
// New accounts get one assigned at registration; users may replace it later.
func AvatarURL(nickname string) string {
	return fmt.Sprintf(
		"https://avatars.dicebear.com/api/%s/%s.svg",
		DefaultAvatarStyle,
		url.PathEscape(nickname),
	)
}
