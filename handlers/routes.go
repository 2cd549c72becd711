package handlers

import "github.com/labstack/echo/v4"

// Register mounts the public API under /api and the administrator API under
// /api/admin behind the auth middleware.
func Register(e *echo.Echo, h *Handler, auth ...echo.MiddlewareFunc) {
	api := e.Group("/api")
	api.POST("/signin", h.Signin)
	api.GET("/clubs", h.Clubs)
	api.GET("/seasons", h.Seasons)
	api.GET("/seasons/:season", h.Season)
	api.GET("/races/:season/:race", h.RaceResults)
	api.GET("/championship/:season/:gender", h.TeamChampionship)
	api.GET("/individual-championship/:season/:gender", h.IndividualChampionship)
	api.GET("/participants/:barcode/results", h.ParticipantResults)

	admin := api.Group("/admin", auth...)
	admin.POST("/password-hash", h.PasswordHash)

	admin.GET("/participants", h.Participants)
	admin.POST("/participants", h.CreateParticipant)
	admin.POST("/participants/upload", h.UploadParticipants)
	admin.GET("/participants/export", h.ExportParticipants)
	admin.PUT("/participants/:barcode", h.UpdateParticipant)
	admin.DELETE("/participants/:barcode", h.DeleteParticipant)

	admin.POST("/clubs", h.CreateClub)
	admin.PUT("/clubs/:name", h.UpdateClub)
	admin.DELETE("/clubs/:name", h.DeleteClub)

	admin.POST("/seasons", h.CreateSeason)
	admin.PUT("/seasons/:season", h.UpdateSeason)
	admin.DELETE("/seasons/:season", h.DeleteSeason)

	admin.GET("/races", h.AllRaces)
	admin.POST("/races", h.CreateRace)

	admin.GET("/results/:season/:race", h.AdminRaceResults)
	admin.POST("/results/:season/:race", h.AddResult)
	admin.POST("/results/:season/:race/upload", h.UploadResults)
	admin.DELETE("/results/:season/:race", h.DeleteRaceResults)
	admin.DELETE("/results/:season/:race/:token", h.DeleteResult)
}
