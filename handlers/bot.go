// handlers/bot.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"
	"sales-kpi-bot/utils"

	"github.com/gofiber/fiber/v2"
)

// BotEvent is one inbound chat event forwarded by the transport gateway.
// Photo bytes arrive base64-encoded in the JSON body.
type BotEvent struct {
	UserID           int64  `json:"user_id"`
	ChatID           int64  `json:"chat_id"`
	Type             string `json:"type"`
	Command          string `json:"command,omitempty"`
	Text             string `json:"text,omitempty"`
	Photo            []byte `json:"photo,omitempty"`
	PhotoContentType string `json:"photo_content_type,omitempty"`
}

// BotReply carries the messages to send back, in order.
type BotReply struct {
	Messages []string `json:"messages"`
	Options  []string `json:"options,omitempty"`
	Done     bool     `json:"done"`
}

type BotHandler struct {
	Users         *services.UserService
	Targets       *services.TargetService
	Records       *services.RecordService
	Progress      *services.ProgressService
	Roles         *services.RoleService
	Conversations *services.ConversationManager
}

func SetupBotRoutes(app *fiber.App, h *BotHandler) {
	group := app.Group("/bot", middleware.ServiceAuthMiddleware())

	group.Post("/event", func(c *fiber.Ctx) error {
		var ev BotEvent
		if err := c.BodyParser(&ev); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if ev.UserID <= 0 || ev.ChatID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and chat_id are required",
			})
		}

		reply := h.handleEvent(c, &ev)
		return c.JSON(reply)
	})
}

func (h *BotHandler) handleEvent(c *fiber.Ctx, ev *BotEvent) *BotReply {
	switch ev.Type {
	case "command":
		return h.handleCommand(ev)
	case "text":
		return h.handleText(ev)
	case "photo":
		return h.handlePhoto(c, ev)
	default:
		return say("🤔 I didn't understand that. Send /help to see what I can do.")
	}
}

func (h *BotHandler) handleCommand(ev *BotEvent) *BotReply {
	cmd := strings.ToLower(strings.TrimPrefix(ev.Command, "/"))

	// A fresh command abandons any flow already in progress.
	if cmd != "cancel" {
		h.Conversations.End(ev.UserID, ev.ChatID)
	}

	switch cmd {
	case "start", "help":
		return h.helpReply(ev.UserID)

	case "cancel":
		if h.Conversations.End(ev.UserID, ev.ChatID) {
			return say("🚫 Cancelled. Nothing was saved.")
		}
		return say("Nothing to cancel.")

	case "register":
		if _, err := h.Users.Get(ev.UserID); err == nil {
			return say("✅ You are already registered. Send /check to see your progress.")
		}
		h.Conversations.Begin(ev.UserID, ev.ChatID, services.FlowRegistration)
		return say("📝 Let's get you registered!\n\nWhat is your full name?")

	case "kpi":
		if err := h.Roles.Require(ev.UserID, models.RoleAdmin); err != nil {
			return say("🚫 Only admins can set KPI targets.")
		}
		reps, err := h.Users.ListSalesReps()
		if err != nil {
			log.Printf("❌ Failed to list sales reps: %v", err)
			return say("❌ Something went wrong fetching the team roster. Please try again.")
		}
		if len(reps) == 0 {
			return say("⚠️ No registered sales reps yet. Ask the team to /register first.")
		}
		h.Conversations.Begin(ev.UserID, ev.ChatID, services.FlowTargetSetting)
		var b strings.Builder
		b.WriteString("🎯 Setting KPI targets for " + monthLabel(time.Now()) + ".\n\nWho is this target for? Reply with the number:\n")
		for i, rep := range reps {
			fmt.Fprintf(&b, "%d. %s (ID %d)\n", i+1, rep.Name, rep.UserID)
		}
		return say(b.String())

	case "submitkpi":
		if reply := h.requireRegistered(ev.UserID); reply != nil {
			return reply
		}
		h.Conversations.Begin(ev.UserID, ev.ChatID, services.FlowMeetupSubmission)
		return say("🤝 Recording a client meetup.\n\nHow many clients did you meet? (1-100)")

	case "submitsale":
		if reply := h.requireRegistered(ev.UserID); reply != nil {
			return reply
		}
		h.Conversations.Begin(ev.UserID, ev.ChatID, services.FlowSaleSubmission)
		return say("💰 Recording a sale.\n\nWhat was the sale amount?")

	case "check":
		return h.progressReply(ev.UserID, ev.Text)

	case "checkall":
		if err := h.Roles.Require(ev.UserID, models.RoleAdmin); err != nil {
			return say("🚫 Only admins can view the team report.")
		}
		return h.teamReply(ev.Text)

	default:
		return say("🤔 Unknown command. Send /help to see what I can do.")
	}
}

func (h *BotHandler) handleText(ev *BotEvent) *BotReply {
	conv, ok := h.Conversations.Get(ev.UserID, ev.ChatID)
	if !ok {
		return say("🤔 I wasn't expecting that. Send /help to see available commands.")
	}

	text := strings.TrimSpace(ev.Text)

	switch conv.State {
	case services.StateAwaitingName:
		name, err := models.ValidateName("name", text, 100)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWhat is your full name?")
		}
		conv.Data.Name = name
		h.Conversations.Advance(conv)
		return say("🌍 Nice to meet you, " + name + "!\n\nWhat is your nationality?")

	case services.StateAwaitingNationality:
		nationality, err := models.ValidateName("nationality", text, 50)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWhat is your nationality?")
		}
		conv.Data.Nationality = nationality
		h.Conversations.Advance(conv)
		return say("📱 What is your phone number?")

	case services.StateAwaitingPhone:
		if err := models.ValidatePhone(text); err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWhat is your phone number?")
		}
		conv.Data.Phone = strings.TrimSpace(text)
		h.Conversations.Advance(conv)
		return say("👆 Who is your upline?")

	case services.StateAwaitingUpline:
		upline, err := models.ValidateName("upline", text, 100)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWho is your upline?")
		}
		conv.Data.Upline = upline
		user := models.User{
			UserID:      ev.UserID,
			Name:        conv.Data.Name,
			Nationality: conv.Data.Nationality,
			Phone:       conv.Data.Phone,
			Upline:      upline,
		}
		if err := h.Users.Register(&user); err != nil {
			h.Conversations.End(ev.UserID, ev.ChatID)
			if errors.Is(err, services.ErrDuplicateRegistration) {
				return say("✅ You are already registered.")
			}
			log.Printf("❌ Registration failed for user %d: %v", ev.UserID, err)
			return say("❌ Something went wrong saving your registration. Please try /register again.")
		}
		h.Conversations.Advance(conv)
		return done("🎉 Registration complete! Welcome aboard, " + user.Name + ".\n\nSend /submitkpi after your next client meetup.")

	case services.StateAwaitingClientCount:
		count, err := strconv.Atoi(text)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ Please send a whole number.\n\nHow many clients did you meet?")
		}
		if err := models.ValidateMeetupValue(count); err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nHow many clients did you meet?")
		}
		conv.Data.ClientCount = count
		h.Conversations.Advance(conv)
		return say("📸 Got it. Now send a photo from the meetup as evidence.")

	case services.StateAwaitingSaleAmount:
		amount, err := strconv.ParseFloat(strings.TrimPrefix(text, "$"), 64)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ Please send a number, like 450 or 450.50.\n\nWhat was the sale amount?")
		}
		if err := models.ValidateSaleValue(amount); err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWhat was the sale amount?")
		}
		conv.Data.SaleAmount = amount
		h.Conversations.Advance(conv)
		return say("📸 " + utils.FormatCurrency(amount) + " — nice! Now send a photo of the receipt as evidence.")

	case services.StateAwaitingMeetupPhoto, services.StateAwaitingSalePhoto:
		h.Conversations.Touch(conv)
		return say("📸 I need a photo here, not text. Please send the evidence photo, or /cancel to stop.")

	case services.StateAwaitingRepSelection:
		return h.handleRepSelection(conv, text)

	case services.StateAwaitingMeetupTarget:
		target, err := strconv.Atoi(text)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ Please send a whole number.\n\nHow many meetups should " + conv.Data.SelectedUserName + " hit this month?")
		}
		if err := models.ValidateMeetupTarget(target); err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nHow many meetups should " + conv.Data.SelectedUserName + " hit this month?")
		}
		conv.Data.MeetupTarget = target
		h.Conversations.Advance(conv)
		return say("💰 And the sales target for " + conv.Data.SelectedUserName + "?")

	case services.StateAwaitingSalesTarget:
		target, err := strconv.ParseFloat(strings.TrimPrefix(text, "$"), 64)
		if err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ Please send a number.\n\nWhat is the sales target?")
		}
		if err := models.ValidateSalesTarget(target); err != nil {
			h.Conversations.Touch(conv)
			return say("⚠️ " + err.Error() + "\n\nWhat is the sales target?")
		}
		conv.Data.SalesTarget = target
		h.Conversations.Advance(conv)
		return &BotReply{
			Messages: []string{fmt.Sprintf(
				"🎯 Please confirm the %s targets for %s:\n\n🤝 Meetups: %d\n💰 Sales: %s\n\nSave these targets?",
				monthLabel(time.Now()), conv.Data.SelectedUserName,
				conv.Data.MeetupTarget, utils.FormatCurrency(conv.Data.SalesTarget))},
			Options: []string{"yes", "no"},
		}

	case services.StateAwaitingConfirmation:
		return h.handleConfirmation(conv, text)

	default:
		h.Conversations.End(ev.UserID, ev.ChatID)
		return say("🤔 Something got out of sync. Let's start over — send /help.")
	}
}

func (h *BotHandler) handleRepSelection(conv *services.Conversation, text string) *BotReply {
	reps, err := h.Users.ListSalesReps()
	if err != nil {
		log.Printf("❌ Failed to list sales reps: %v", err)
		h.Conversations.Touch(conv)
		return say("❌ Something went wrong. Please try again.")
	}

	choice, err := strconv.Atoi(text)
	if err != nil || choice < 1 || choice > len(reps) {
		h.Conversations.Touch(conv)
		return say(fmt.Sprintf("⚠️ Please reply with a number between 1 and %d.", len(reps)))
	}

	rep := reps[choice-1]
	conv.Data.SelectedUserID = rep.UserID
	conv.Data.SelectedUserName = rep.Name
	h.Conversations.Advance(conv)
	return say(fmt.Sprintf("🤝 Setting targets for %s.\n\nHow many client meetups this month? (0-%d)",
		rep.Name, models.MaxMeetupTarget))
}

func (h *BotHandler) handleConfirmation(conv *services.Conversation, text string) *BotReply {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "confirm":
		now := time.Now()
		_, err := h.Targets.Upsert(conv.Data.SelectedUserID, int(now.Month()), now.Year(),
			conv.Data.MeetupTarget, conv.Data.SalesTarget)
		if err != nil {
			h.Conversations.End(conv.UserID, conv.ChatID)
			log.Printf("❌ Failed to save target for user %d: %v", conv.Data.SelectedUserID, err)
			return say("❌ Failed to save the targets. Please try /kpi again.")
		}
		h.Conversations.Advance(conv)
		return done(fmt.Sprintf("✅ Targets saved for %s:\n\n🤝 Meetups: %d\n💰 Sales: %s",
			conv.Data.SelectedUserName, conv.Data.MeetupTarget, utils.FormatCurrency(conv.Data.SalesTarget)))
	case "no", "n":
		h.Conversations.End(conv.UserID, conv.ChatID)
		return done("🚫 Discarded. Send /kpi to start over.")
	default:
		h.Conversations.Touch(conv)
		return &BotReply{
			Messages: []string{"Please reply yes or no."},
			Options:  []string{"yes", "no"},
		}
	}
}

func (h *BotHandler) handlePhoto(c *fiber.Ctx, ev *BotEvent) *BotReply {
	conv, ok := h.Conversations.Get(ev.UserID, ev.ChatID)
	if !ok {
		return say("🤔 Thanks for the photo, but I wasn't expecting one. Send /submitkpi or /submitsale first.")
	}
	if len(ev.Photo) == 0 {
		h.Conversations.Touch(conv)
		return say("⚠️ The photo came through empty. Please send it again.")
	}

	var recordType string
	var value float64
	switch conv.State {
	case services.StateAwaitingMeetupPhoto:
		recordType = models.RecordTypeMeetup
		value = float64(conv.Data.ClientCount)
	case services.StateAwaitingSalePhoto:
		recordType = models.RecordTypeSale
		value = conv.Data.SaleAmount
	default:
		h.Conversations.Touch(conv)
		return say("🤔 I don't need a photo for this step. Please answer the question above.")
	}

	now := time.Now()
	contentType := ev.PhotoContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	filename := utils.GeneratePhotoFilename(ev.UserID, recordType, now)
	category := utils.PhotoCategory(recordType)
	photoLink, err := utils.UploadPhoto(c.Context(), ev.Photo, filename, category, now.Year(), int(now.Month()), contentType)
	if err != nil {
		h.Conversations.Touch(conv)
		log.Printf("❌ Photo upload failed for user %d: %v", ev.UserID, err)
		return say("❌ Uploading the photo failed. Please send it again, or /cancel.")
	}

	rec := models.KPIRecord{
		UserID:     ev.UserID,
		RecordType: recordType,
		Value:      value,
		PhotoLink:  photoLink,
		RecordDate: now,
	}
	if err := h.Records.Append(&rec); err != nil {
		h.Conversations.End(ev.UserID, ev.ChatID)
		log.Printf("❌ Failed to save %s record for user %d: %v", recordType, ev.UserID, err)
		return say("❌ Saving the record failed. Please start over.")
	}
	h.Conversations.Advance(conv)

	if recordType == models.RecordTypeMeetup {
		return done(fmt.Sprintf("✅ Meetup recorded: %d client(s).\n\nSend /check to see your progress.", int(value)))
	}
	return done("✅ Sale recorded: " + utils.FormatCurrency(value) + ".\n\nSend /check to see your progress.")
}

// progressReply renders a single user's monthly report. Optional "M YYYY"
// arguments select a past month.
func (h *BotHandler) progressReply(userID int64, args string) *BotReply {
	month, year := parseMonthArgs(args)

	prog, err := h.Progress.Compute(userID, month, year)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoTarget):
			return say("⚠️ No KPI target set for " + monthLabel(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)) + " yet. Ask your admin to set one with /kpi.")
		default:
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return say("⚠️ " + vErr.Error())
			}
			log.Printf("❌ Progress check failed for user %d: %v", userID, err)
			return say("❌ Something went wrong. Please try again.")
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Your progress for %s:\n\n", monthLabel(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)))
	fmt.Fprintf(&b, "🤝 Meetups: %d / %d (%.1f%%)\n%s\n\n",
		prog.CurrentMeetups, prog.MeetupTarget, prog.MeetupPercentage,
		utils.FormatProgressBar(prog.CurrentMeetups, prog.MeetupTarget))
	fmt.Fprintf(&b, "💰 Sales: %s / %s (%.1f%%)\n%s\n\n",
		utils.FormatCurrency(prog.CurrentSales), utils.FormatCurrency(prog.SalesTarget), prog.SalesPercentage,
		utils.FormatProgressBar(int(prog.CurrentSales), int(prog.SalesTarget)))
	tier := prog.Tier()
	fmt.Fprintf(&b, "%s %s — %.1f%% overall", utils.TierEmoji(tier), tier, prog.OverallPercentage())
	return say(b.String())
}

func (h *BotHandler) teamReply(args string) *BotReply {
	month, year := parseMonthArgs(args)
	report, err := h.Progress.ComputeAll(month, year)
	if err != nil {
		log.Printf("❌ Team report failed: %v", err)
		return say("❌ Something went wrong building the team report.")
	}
	if len(report) == 0 {
		return say("⚠️ No one has a target set for this month yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Team progress for %s:\n\n", monthLabel(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)))
	for _, prog := range report {
		tier := prog.Tier()
		fmt.Fprintf(&b, "%s %s — %.1f%% (🤝 %d/%d, 💰 %s/%s)\n",
			utils.TierEmoji(tier), prog.Name, prog.OverallPercentage(),
			prog.CurrentMeetups, prog.MeetupTarget,
			utils.FormatCurrency(prog.CurrentSales), utils.FormatCurrency(prog.SalesTarget))
	}
	return say(b.String())
}

func (h *BotHandler) helpReply(userID int64) *BotReply {
	var b strings.Builder
	b.WriteString("👋 Hi! I track your sales KPIs.\n\n")
	b.WriteString("/register — join the team roster\n")
	b.WriteString("/submitkpi — record a client meetup (photo required)\n")
	b.WriteString("/submitsale — record a sale (photo required)\n")
	b.WriteString("/check — your progress this month\n")
	b.WriteString("/cancel — abandon the current conversation\n")
	if h.Roles.IsAdmin(userID) {
		b.WriteString("\n🔐 Admin commands:\n")
		b.WriteString("/kpi — set monthly targets for a rep\n")
		b.WriteString("/checkall — team-wide progress report\n")
	}
	return say(b.String())
}

func (h *BotHandler) requireRegistered(userID int64) *BotReply {
	_, err := h.Users.Get(userID)
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrNotFound) {
		return say("⚠️ You need to /register before submitting records.")
	}
	log.Printf("❌ Registration lookup failed for user %d: %v", userID, err)
	return say("❌ Something went wrong. Please try again.")
}

func parseMonthArgs(args string) (int, int) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	fields := strings.Fields(args)
	if len(fields) >= 1 {
		if m, err := strconv.Atoi(fields[0]); err == nil {
			month = m
		}
	}
	if len(fields) >= 2 {
		if y, err := strconv.Atoi(fields[1]); err == nil {
			year = y
		}
	}
	return month, year
}

func monthLabel(t time.Time) string {
	return t.Format("January 2006")
}

func say(messages ...string) *BotReply {
	return &BotReply{Messages: messages}
}

func done(messages ...string) *BotReply {
	return &BotReply{Messages: messages, Done: true}
}
