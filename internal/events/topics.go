package events

// Topic constants for domain events emitted by the platform.
const (
	TopicContributionRecorded = "contribution.recorded"
	TopicGoalReached          = "campaign.goal_reached"
	TopicHalfGoalReached      = "campaign.half_goal_reached"
)

// DefaultTopics returns the canonical list of topics that support
// notifications.
func DefaultTopics() []string {
	return []string{
		TopicContributionRecorded,
		TopicGoalReached,
		TopicHalfGoalReached,
	}
}
