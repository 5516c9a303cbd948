package domain

import "time"

type Status string

const (
	StatusNew         Status = "new"
	StatusAlive       Status = "alive"
	StatusDeadLink    Status = "dead_link"
	StatusLoginWall   Status = "login_wall"
	StatusExpired     Status = "expired"
	StatusNeedsReview Status = "needs_review"
	StatusResolvedATS Status = "resolved_ats"
	StatusNoATSLink   Status = "no_ats_link"
	StatusError       Status = "error"
)

var statuses = map[Status]bool{
	StatusNew: true, StatusAlive: true, StatusDeadLink: true, StatusLoginWall: true,
	StatusExpired: true, StatusNeedsReview: true, StatusResolvedATS: true,
	StatusNoATSLink: true, StatusError: true,
}

func (s Status) Valid() bool { return statuses[s] }

type NextAction string

const (
	NextTailorResume  NextAction = "tailor_resume"
	NextReviewDetails NextAction = "review_details"
	NextRetryFetch    NextAction = "retry_fetch"
	NextDrop          NextAction = "drop"
	NextNone          NextAction = "none"
)

func (a NextAction) Valid() bool {
	switch a {
	case NextTailorResume, NextReviewDetails, NextRetryFetch, NextDrop, NextNone:
		return true
	}
	return false
}

// Posting is the canonical, deduplicated record for one job opening.
type Posting struct {
	ID                        string
	CanonicalURL              string
	Company                   string
	JobTitle                  string
	Location                  string
	SourceHost                string
	Status                    Status
	NextAction                NextAction
	CaptureIDs                IDSet
	DedupeKeyExact            string
	DedupeKeyCompanyTitleHost string
	AtsReqID                  string
	LastCheckedAt             *time.Time
}

type ATSType string

const (
	ATSWorkday         ATSType = "workday"
	ATSGreenhouse      ATSType = "greenhouse"
	ATSLever           ATSType = "lever"
	ATSSmartRecruiters ATSType = "smartrecruiters"
	ATSICIMS           ATSType = "icims"
	ATSTaleo           ATSType = "taleo"
	ATSAshby           ATSType = "ashby"
	ATSBambooHR        ATSType = "bamboohr"
	ATSTeamtailor      ATSType = "teamtailor"
	ATSUnknown         ATSType = "unknown"
)

// AtsResolution is enrichment written by ATS resolver jobs. The intake
// pipeline only reads and deletes it.
type AtsResolution struct {
	ID         string
	PostingID  string
	AtsType    ATSType
	AtsURL     string
	Confidence float64
	Method     string
}
