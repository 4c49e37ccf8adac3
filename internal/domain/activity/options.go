package activity

// DefaultLimit caps the feed when no limit is given.
const DefaultLimit = 10

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	TreeID       string
	ActivityType *ActivityType
	Limit        int
}
