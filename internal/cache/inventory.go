package cache

import (
	"fmt"
	"time"
)

const (
	FollowerCountKeyPrefix  = "user:%d:followers"
	FollowingCountKeyPrefix = "user:%d:following"
	SuggestionsKeyPrefix    = "user:%d:suggestions"
	BlacklistKeyPrefix      = "blacklist:%s"
)

const (
	FollowCountTTL = 10 * time.Minute
	SuggestionsTTL = 2 * time.Minute
)

func FollowerCountKey(userID uint) string {
	return fmt.Sprintf(FollowerCountKeyPrefix, userID)
}

func FollowingCountKey(userID uint) string {
	return fmt.Sprintf(FollowingCountKeyPrefix, userID)
}

func SuggestionsKey(userID uint) string {
	return fmt.Sprintf(SuggestionsKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}
