package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/lifeos/internal/bot"
	"github.com/julianstephens/lifeos/internal/calendar"
	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/logger"
)

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lerrors.ErrParseFailure):
		return http.StatusBadRequest
	case errors.Is(err, lerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lerrors.ErrConfigurationMissing):
		return http.StatusConflict
	case errors.Is(err, lerrors.ErrExternalIO):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": constants.Version,
	})
}

func (s *Server) handleMessage(c *gin.Context) {
	var msg bot.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.bot.HandleMessage(c.Request.Context(), msg)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  res,
	})
}

func (s *Server) handleReaction(c *gin.Context) {
	var r bot.Reaction
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.bot.HandleReaction(c.Request.Context(), r); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type commandRequest struct {
	Args string `json:"args"`
}

func (s *Server) handleCommand(c *gin.Context) {
	var req commandRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	reply, err := s.bot.Command(c.Request.Context(), c.Param("name"), req.Args)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

func (s *Server) handleTodos(c *gin.Context) {
	svc := s.bot.Services().Todos
	ctx := c.Request.Context()

	status := constants.TodoStatus(c.Query("status"))
	switch status {
	case "", constants.TodoPending:
		ranked, err := svc.Ranked(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		items := make([]gin.H, 0, len(ranked))
		for _, r := range ranked {
			items = append(items, gin.H{
				"todo":  r.Todo,
				"score": r.Score,
				"tier":  r.Tier,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"todos":   items,
			"count":   len(items),
		})
	case constants.TodoDone:
		done, err := svc.List(ctx, status)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"todos":   done,
			"count":   len(done),
		})
	default:
		badRequest(c, errors.New("status must be pending or done"))
	}
}

func (s *Server) handleHabitsToday(c *gin.Context) {
	svc := s.bot.Services().Habits
	today := svc.Today()

	statuses, err := svc.StatusOn(c.Request.Context(), today)
	if err != nil {
		fail(c, err)
		return
	}
	items := make([]gin.H, 0, len(statuses))
	for _, st := range statuses {
		items = append(items, gin.H{
			"habit":     st.Habit.Name,
			"emoji":     st.Habit.Emoji,
			"recorded":  st.Recorded,
			"completed": st.Completed,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"date":    today,
		"habits":  items,
	})
}

func (s *Server) handleStreak(c *gin.Context) {
	svc := s.bot.Services().Habits

	habit, err := svc.Find(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	streak, err := svc.Streak(c.Request.Context(), habit.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"habit":   habit.Name,
		"streak":  streak,
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	svc := s.bot.Services().Calendar

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(constants.DailyCalendarDays)))
	if err != nil || days < 1 {
		badRequest(c, errors.New("days must be a positive integer"))
		return
	}
	calendarID, err := svc.CalendarID(calendar.Kind(c.DefaultQuery("calendar", string(calendar.Personal))))
	if err != nil {
		fail(c, err)
		return
	}
	events, err := svc.Upcoming(c.Request.Context(), calendarID, days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

func (s *Server) handleTickets(c *gin.Context) {
	svc := s.bot.Services().Tickets

	project, err := svc.Project(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	status := constants.TicketStatus(c.Query("status"))
	tickets, err := svc.List(c.Request.Context(), project.ID, status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
		"tickets": tickets,
		"count":   len(tickets),
	})
}
