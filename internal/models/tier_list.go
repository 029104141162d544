package models

// CommunityTierList is the aggregated community vote of character strength.
type CommunityTierList struct {
	TotalVotes int32           `json:"total_votes"`
	Entries    []TierListEntry `json:"entries"`
}

type TierListEntry struct {
	Character            int32   `json:"character"`
	Eidolon              int32   `json:"eidolon"`
	Average              float64 `json:"average"`
	Variance             float64 `json:"variance"`
	Quartile1            float64 `json:"quartile_1"`
	Quartile3            float64 `json:"quartile_3"`
	ConfidenceInterval95 float64 `json:"confidence_interval_95"`
	Votes                int32   `json:"votes"`
	CharacterName        string  `json:"character_name"`
	CharacterPath        string  `json:"character_path"`
	CharacterElement     string  `json:"character_element"`
}
