package commands

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/fantasy-auction/internal/auction"
	"github.com/jensholdgaard/fantasy-auction/internal/standings"
)

// Handlers process Discord interactions.
type Handlers struct {
	engine       *auction.Engine
	standingsMgr *standings.Manager
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewHandlers creates new command handlers.
func NewHandlers(engine *auction.Engine, standingsMgr *standings.Manager, logger *slog.Logger, tp trace.TracerProvider) *Handlers {
	return &Handlers{
		engine:       engine,
		standingsMgr: standingsMgr,
		logger:       logger,
		tracer:       tp.Tracer("github.com/jensholdgaard/fantasy-auction/internal/bot/commands"),
	}
}

// SlashCommands returns the slash command definitions.
func SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "lot",
			Description: "Show the player currently up for auction",
		},
		{
			Name:        "select-bidder",
			Description: "Select which team owner the next bid applies to",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "owner",
					Description: "Team owner name",
					Required:    true,
				},
			},
		},
		{
			Name:        "bid",
			Description: "Place a bid for a team owner",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "owner",
					Description: "Team owner name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Bid amount",
					Required:    true,
				},
			},
		},
		{
			Name:        "raise",
			Description: "Raise the asking price by the category increment",
		},
		{
			Name:        "confirm",
			Description: "Bid the asking price for the selected owner",
		},
		{
			Name:        "sold",
			Description: "Finalize the sale to the leading bidder",
		},
		{
			Name:        "unsold",
			Description: "Close bidding on the current player without a sale",
		},
		{
			Name:        "next-category",
			Description: "Advance the auction to the next category",
		},
		{
			Name:        "budgets",
			Description: "Show every owner's remaining budget and squad slots",
		},
		{
			Name:        "auction-reset",
			Description: "Reset the auction: all players unsold, all budgets restored (admin only)",
		},
		{
			Name:        "standings",
			Description: "Show the tournament points leaderboard",
		},
		{
			Name:        "points-add",
			Description: "Add match points to a team owner (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "owner",
					Description: "Team owner name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "points",
					Description: "Points to add",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Match or reason for the points",
					Required:    true,
				},
			},
		},
	}
}

// InteractionCreate handles incoming slash command interactions.
func (h *Handlers) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, span := h.tracer.Start(context.Background(), "InteractionCreate",
		trace.WithAttributes(attribute.String("command", i.ApplicationCommandData().Name)),
	)
	defer span.End()

	switch i.ApplicationCommandData().Name {
	case "lot":
		h.handleLot(ctx, s, i)
	case "select-bidder":
		h.handleSelectBidder(ctx, s, i)
	case "bid":
		h.handleBid(ctx, s, i)
	case "raise":
		h.handleRaise(ctx, s, i)
	case "confirm":
		h.handleConfirm(ctx, s, i)
	case "sold":
		h.handleSold(ctx, s, i)
	case "unsold":
		h.handleUnsold(ctx, s, i)
	case "next-category":
		h.handleNextCategory(ctx, s, i)
	case "budgets":
		h.handleBudgets(ctx, s, i)
	case "auction-reset":
		h.handleReset(ctx, s, i)
	case "standings":
		h.handleStandings(ctx, s, i)
	case "points-add":
		h.handlePointsAdd(ctx, s, i)
	default:
		respond(s, i, "Unknown command")
	}
}

func (h *Handlers) handleLot(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, renderLot(h.engine.Snapshot()))
}

func (h *Handlers) handleSelectBidder(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Options[0].StringValue()
	owner, ok := h.engine.OwnerByName(name)
	if !ok {
		respond(s, i, fmt.Sprintf("No team owner named **%s**.", name))
		return
	}
	if err := h.engine.SelectBidder(ctx, owner.ID); err != nil {
		respond(s, i, fmt.Sprintf("Cannot select %s: %s", name, err))
		return
	}
	respond(s, i, fmt.Sprintf("Selected **%s** (budget %d, max bid %d)", name, owner.BudgetRemaining, owner.MaxBid))
}

func (h *Handlers) handleBid(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := i.ApplicationCommandData().Options
	name := opts[0].StringValue()
	amount := int(opts[1].IntValue())

	owner, ok := h.engine.OwnerByName(name)
	if !ok {
		respond(s, i, fmt.Sprintf("No team owner named **%s**.", name))
		return
	}
	if err := h.engine.PlaceBid(ctx, owner.ID, amount); err != nil {
		respond(s, i, fmt.Sprintf("Bid rejected: %s", err))
		return
	}
	respond(s, i, fmt.Sprintf("**%s** bids **%d**", name, amount))
}

func (h *Handlers) handleRaise(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	price, err := h.engine.IncrementBid(ctx)
	if err != nil {
		respond(s, i, fmt.Sprintf("Cannot raise: %s", err))
		return
	}
	respond(s, i, fmt.Sprintf("Asking price is now **%d**", price))
}

func (h *Handlers) handleConfirm(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.engine.BidSelected(ctx); err != nil {
		respond(s, i, fmt.Sprintf("Cannot confirm: %s", err))
		return
	}
	snap := h.engine.Snapshot()
	respond(s, i, fmt.Sprintf("Bid confirmed at **%d**", snap.CurrentBid))
}

func (h *Handlers) handleSold(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	before := h.engine.Snapshot()
	if err := h.engine.FinalizeSale(ctx); err != nil {
		respond(s, i, fmt.Sprintf("Cannot finalize: %s", err))
		return
	}
	msg := fmt.Sprintf("**SOLD** for **%d**!", before.CurrentBid)
	if before.Player != nil {
		msg = fmt.Sprintf("**%s SOLD** for **%d**!", before.Player.Name, before.CurrentBid)
	}
	respond(s, i, msg+"\n"+renderLot(h.engine.Snapshot()))
}

func (h *Handlers) handleUnsold(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	before := h.engine.Snapshot()
	if err := h.engine.MarkUnsold(ctx); err != nil {
		respond(s, i, fmt.Sprintf("Cannot mark unsold: %s", err))
		return
	}
	msg := "Player goes **unsold**."
	if before.Player != nil {
		msg = fmt.Sprintf("**%s** goes **unsold**.", before.Player.Name)
	}
	respond(s, i, msg+"\n"+renderLot(h.engine.Snapshot()))
}

func (h *Handlers) handleNextCategory(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.engine.AdvanceCategory(ctx); err != nil {
		respond(s, i, fmt.Sprintf("Cannot advance: %s", err))
		return
	}
	respond(s, i, renderLot(h.engine.Snapshot()))
}

func (h *Handlers) handleBudgets(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	snap := h.engine.Snapshot()
	var b strings.Builder
	b.WriteString("**Budgets:**\n")
	for _, o := range snap.Owners {
		fmt.Fprintf(&b, "%s: budget %d, squad %d, slots left %d, max bid %d\n",
			o.Name, o.BudgetRemaining, o.PlayersOwned, o.SlotsRemaining, o.MaxBid)
	}
	respond(s, i, b.String())
}

func (h *Handlers) handleReset(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.engine.ResetAuction(ctx); err != nil {
		respond(s, i, fmt.Sprintf("Reset failed: %s", err))
		return
	}
	respond(s, i, "Auction reset: all players unsold, all budgets restored.\n"+renderLot(h.engine.Snapshot()))
}

func (h *Handlers) handleStandings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	owners, err := h.standingsMgr.Leaderboard(ctx, h.engine.TournamentID())
	if err != nil {
		respond(s, i, fmt.Sprintf("Error listing standings: %s", err))
		return
	}
	if len(owners) == 0 {
		respond(s, i, "No team owners registered yet.")
		return
	}
	var b strings.Builder
	b.WriteString("**Standings:**\n")
	for idx, o := range owners {
		fmt.Fprintf(&b, "%d. %s: %d points\n", idx+1, o.Name, o.TotalPoints)
	}
	respond(s, i, b.String())
}

func (h *Handlers) handlePointsAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := i.ApplicationCommandData().Options
	name := opts[0].StringValue()
	points := int(opts[1].IntValue())
	reason := opts[2].StringValue()

	owner, ok := h.engine.OwnerByName(name)
	if !ok {
		respond(s, i, fmt.Sprintf("No team owner named **%s**.", name))
		return
	}
	if err := h.standingsMgr.AwardPoints(ctx, owner.ID, points, reason); err != nil {
		respond(s, i, fmt.Sprintf("Failed to add points: %s", err))
		return
	}
	respond(s, i, fmt.Sprintf("Added **%d points** to **%s** for: %s", points, name, reason))
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
		},
	})
}

// renderLot formats the current auction state for the channel.
func renderLot(snap auction.Snapshot) string {
	switch snap.Phase {
	case auction.PhaseComplete:
		return "The auction is **complete**. Every player is sold."
	case auction.PhaseAwaitingCategory:
		return fmt.Sprintf("Category **%s** is done. Use `/next-category` to continue.", snap.Category.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Up for auction: **%s**", snap.Player.Name)
	if snap.Player.Role != "" {
		fmt.Fprintf(&b, " (%s)", snap.Player.Role)
	}
	fmt.Fprintf(&b, "\nCategory **%s** (+%d per raise, %d players left)",
		snap.Category.Name, snap.Category.Adder, snap.RemainingInCategory)
	fmt.Fprintf(&b, "\nCurrent price: **%d**", snap.CurrentBid)
	if snap.LeadingBidder != "" {
		leader := snap.LeadingBidder
		for _, o := range snap.Owners {
			if o.ID == snap.LeadingBidder {
				leader = o.Name
				break
			}
		}
		fmt.Fprintf(&b, ", leading bidder **%s**", leader)
	} else {
		b.WriteString(", no bids yet")
	}
	return b.String()
}
