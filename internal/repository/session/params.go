package session

type SetFeedParams struct {
	SessionId          string
	VideoId            string
	CurrentIndex       int
	FreeEpisodes       int
	SingleEpisodePrice float64
	AllEpisodesPrice   float64
	UserId             string
	UserToken          string
	Episodes           []Episode
}

type SetEpisodesParams struct {
	SessionId string
	Episodes  []Episode
}

type SetUserParams struct {
	SessionId string
	UserId    string
	UserToken string
}

type SetPlayURLParams struct {
	SessionId string
	EpisodeId string
	PlayURL   string
}

type SetPendingOrderParams struct {
	SessionId string
	Order     PendingOrder
}
