package redis

import "fmt"

const ns = "playpass:v1"

func KeyListing(listingID int64) string {
	return fmt.Sprintf("%s:listing:%d:detail", ns, listingID)
}

func KeyListingPlans(listingID int64) string {
	return fmt.Sprintf("%s:listing:%d:plans", ns, listingID)
}

func KeyListingSessions(listingID int64, from, to string) string {
	return fmt.Sprintf("%s:listing:%d:sessions:%s:%s", ns, listingID, from, to)
}

func patternListingSessions(listingID int64) string {
	return fmt.Sprintf("%s:listing:%d:sessions:*", ns, listingID)
}

func KeySelection(selectionID string) string {
	return fmt.Sprintf("%s:selection:%s", ns, selectionID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdem(scope string, userID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:%s:%d:%s", ns, scope, userID, idemKey)
}

func ChannelListingsChanged() string {
	return ns + ":listings:changed"
}
