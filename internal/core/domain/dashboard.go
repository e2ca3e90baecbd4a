package domain

// View is a named page of a role's dashboard.
type View string

const (
	ViewQuestions   View = "questions"
	ViewAnswer      View = "answer"
	ViewSubmissions View = "submissions"
	ViewAddQuestion View = "add-question"
)

var dashboards = map[Role][]View{
	RoleStudent: {ViewQuestions, ViewAnswer, ViewSubmissions},
	RoleTeacher: {ViewQuestions, ViewAddQuestion, ViewSubmissions},
}

// Dashboard lists the views reachable by a session.
type Dashboard struct {
	Role        Role   `json:"role"`
	Views       []View `json:"views"`
	DefaultView View   `json:"defaultView"`
}

// DashboardFor returns the dashboard of user, or ErrNoSession when there is no
// user or its role is unknown (the caller falls back to the sign-in page).
func DashboardFor(user *User) (Dashboard, error) {
	if user == nil {
		return Dashboard{}, ErrNoSession
	}
	views, ok := dashboards[user.Role]
	if !ok {
		return Dashboard{}, ErrNoSession
	}
	out := make([]View, len(views))
	copy(out, views)
	return Dashboard{Role: user.Role, Views: out, DefaultView: ViewQuestions}, nil
}

// CanAccess reports whether user may open view.
func CanAccess(user *User, view View) bool {
	if user == nil {
		return false
	}
	for _, v := range dashboards[user.Role] {
		if v == view {
			return true
		}
	}
	return false
}
