package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/drivers", handler.ListDrivers)

	mux.HandleFunc("GET /v1/users", handler.ListUsers)
	mux.HandleFunc("POST /v1/users", handler.AddUser)
	mux.HandleFunc("GET /v1/users/{userID}/log", handler.GetUserRaceLog)
	mux.HandleFunc("GET /v1/users/{userID}/races/{raceID}/picks", handler.GetUserPicks)
	mux.HandleFunc("GET /v1/turn-order", handler.GetTurnOrder)

	mux.HandleFunc("GET /v1/races", handler.ListRaces)
	mux.HandleFunc("GET /v1/races/current", handler.GetCurrentRace)
	mux.HandleFunc("GET /v1/races/{raceID}/draft-open", handler.GetDraftOpen)
	mux.HandleFunc("GET /v1/races/{raceID}/picks/{variant}", handler.ResolvePicks)
	mux.HandleFunc("GET /v1/races/{raceID}/results", handler.GetResult)
	mux.HandleFunc("GET /v1/races/{raceID}/results/drivers/{driverID}/finish", handler.ClassifyDriver)
	mux.HandleFunc("GET /v1/races/{raceID}/standings", handler.GetRaceStandings)

	mux.HandleFunc("GET /v1/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/standings/summary", handler.GetSeasonSummary)
}

// Admin checks happen in the use cases; these routes only need an acting user.
func registerUserRoutes(mux *http.ServeMux, handler *Handler, resolver PrincipalResolver) {
	user := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireUser(resolver, fn))
	}

	user("DELETE /v1/users/{userID}", handler.DeleteUser)
	user("POST /v1/users/{userID}/admin", handler.MakeAdmin)
	user("PUT /v1/turn-order", handler.ReorderTurnOrder)

	user("POST /v1/races", handler.CreateRace)
	user("PUT /v1/races/{raceID}", handler.UpdateRace)
	user("DELETE /v1/races/{raceID}", handler.DeleteRace)

	user("GET /v1/races/{raceID}/rankings/{variant}", handler.GetRanking)
	user("PUT /v1/races/{raceID}/rankings/{variant}", handler.SaveRanking)
	user("POST /v1/races/{raceID}/draft/submit", handler.SubmitDraft)

	user("GET /v1/races/{raceID}/bonus", handler.GetBonusPicks)
	user("PUT /v1/races/{raceID}/bonus/pole", handler.SavePolePick)
	user("PUT /v1/races/{raceID}/bonus/top5", handler.SaveTop5Pick)
	user("POST /v1/races/{raceID}/bonus/submit", handler.SubmitBonuses)

	user("POST /v1/results/parse", handler.ParseResults)
	user("POST /v1/results", handler.PublishLatestResults)
	user("PUT /v1/races/{raceID}/results", handler.PublishResults)
	user("POST /v1/races/{raceID}/score", handler.ScoreRace)
	user("POST /v1/standings/rescore", handler.RescoreSeason)
	user("PUT /v1/adjustments/{userID}", handler.SetSeasonAdjustment)
	user("POST /v1/undo", handler.Undo)
}
