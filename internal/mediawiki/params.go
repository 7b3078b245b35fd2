package mediawiki

type tokenQuery struct {
	Action string `url:"action"`
	Meta   string `url:"meta"`
	Type   string `url:"type,omitempty"`
}

type loginParams struct {
	Action   string `url:"action"`
	Name     string `url:"lgname"`
	Password string `url:"lgpassword"`
	Token    string `url:"lgtoken"`
}

type logoutParams struct {
	Action string `url:"action"`
	Token  string `url:"token"`
}

type revisionsQuery struct {
	Action string `url:"action"`
	Prop   string `url:"prop"`
	Titles string `url:"titles"`
	Slots  string `url:"rvslots"`
	RvProp string `url:"rvprop"`
}

type editParams struct {
	Action  string `url:"action"`
	Title   string `url:"title"`
	Text    string `url:"text"`
	Summary string `url:"summary"`
	Bot     bool   `url:"bot,int,omitempty"`
	Token   string `url:"token"`
}

type reviewParams struct {
	Action   string `url:"action"`
	PageID   int64  `url:"pageid"`
	Reviewed int    `url:"reviewed"`
	Token    string `url:"token"`
}

type tokensResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

type loginResponse struct {
	Login struct {
		Result   string `json:"result"`
		Reason   string `json:"reason"`
		Username string `json:"lgusername"`
	} `json:"login"`
}

type revisionsResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

type editResponse struct {
	Edit struct {
		Result string `json:"result"`
	} `json:"edit"`
}

type reviewResponse struct {
	PageTriageAction struct {
		Result string `json:"result"`
	} `json:"pagetriageaction"`
}
