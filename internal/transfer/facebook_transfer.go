package transfer

type FacebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	Category    string `json:"category"`
	Picture     struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type FacebookPages struct {
	Data []FacebookPage `json:"data"`
}

type FacebookPublishResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type FacebookAttachedMedia struct {
	MediaFBID string `json:"media_fbid"`
}

type FacebookErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

type FacebookPageInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FollowersCount int64  `json:"followers_count"`
	FanCount       int64  `json:"fan_count"`
}

type FacebookSummary struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}

type FacebookPostInsight struct {
	ID           string          `json:"id"`
	Message      string          `json:"message"`
	CreatedTime  string          `json:"created_time"`
	PermalinkURL string          `json:"permalink_url"`
	Likes        FacebookSummary `json:"likes"`
	Comments     FacebookSummary `json:"comments"`
	Shares       struct {
		Count int64 `json:"count"`
	} `json:"shares"`
}

type FacebookPostList struct {
	Data []FacebookPostInsight `json:"data"`
}
