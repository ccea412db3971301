// Package game holds the concrete modes, windows and forms of the trail and
// registers them with a state registry. States reach the running simulation
// only through the Session they were registered with.
package game

import (
	"context"

	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/world"
)

// Modes.
const (
	ModeNewGame     state.ID = "NewGame"
	ModeTravel      state.ID = "Travel"
	ModeStore       state.ID = "Store"
	ModeRandomEvent state.ID = "RandomEvent"
	ModeLandmark    state.ID = "Landmark"
	ModeGameOver    state.ID = "GameOver"
)

// Windows.
const (
	WinParty   state.ID = "NewGame.Party"
	WinTrail   state.ID = "Travel.Trail"
	WinCamp    state.ID = "Travel.Camp"
	WinCounter state.ID = "Store.Counter"
	WinNotice  state.ID = "RandomEvent.Notice"
	WinArrival state.ID = "Landmark.Arrival"
	WinFinal   state.ID = "GameOver.Final"
)

// Forms.
const (
	FormLeaderName      state.ID = "LeaderName"
	FormPartyNames      state.ID = "PartyNames"
	FormConfirmParty    state.ID = "ConfirmParty"
	FormContinueOnTrail state.ID = "ContinueOnTrail"
	FormCheckSupplies   state.ID = "CheckSupplies"
	FormLookAtMap       state.ID = "LookAtMap"
	FormChangePace      state.ID = "ChangePace"
	FormChangeRations   state.ID = "ChangeRations"
	FormRestAmount      state.ID = "RestAmount"
	FormResting         state.ID = "Resting"
	FormBuyQuantity     state.ID = "BuyQuantity"
	FormFinalScore      state.ID = "FinalScore"
)

// Session is what game states may use of the running simulation.
type Session interface {
	World() *world.World
	Date() clock.Date
	Pace() clock.Pace
	SetPace(p clock.Pace) error
	// Advance ticks the clock once per day at the current pace.
	Advance(days int) error
	// Rest ticks the clock at Paused pace, then restores the previous pace.
	Rest(days int) error
	Embark(prof world.Profession, names []string) error
	Store() *data.StoreTable
	// Finish records a finished run and returns the highscore list. The list
	// is empty when no database is configured.
	Finish(ctx context.Context, name string, points int, rating string) ([]persist.HighscoreRow, error)
}

// Register adds every game state to reg. The caller seals the registry.
func Register(reg *state.Registry, s Session) error {
	descs := []state.Descriptor{
		{ID: ModeNewGame, Kind: state.KindMode, Root: WinParty,
			Data: func() any { return &newGameInfo{} }, New: newNewGame},
		{ID: WinParty, Kind: state.KindWindow, Mode: ModeNewGame, New: state.Blank},
		{ID: FormLeaderName, Kind: state.KindForm, Mode: ModeNewGame, Window: WinParty, New: newLeaderName},
		{ID: FormPartyNames, Kind: state.KindForm, Mode: ModeNewGame, Window: WinParty, New: newPartyNames},
		{ID: FormConfirmParty, Kind: state.KindForm, Mode: ModeNewGame, Window: WinParty, New: newConfirmParty(s)},

		{ID: ModeTravel, Kind: state.KindMode, Root: WinTrail,
			Data: func() any { return &travelInfo{} }, New: newTravel(s)},
		{ID: WinTrail, Kind: state.KindWindow, Mode: ModeTravel, New: state.Blank},
		{ID: WinCamp, Kind: state.KindWindow, Mode: ModeTravel, New: state.Blank},
		{ID: FormContinueOnTrail, Kind: state.KindForm, Mode: ModeTravel, Window: WinTrail, New: newContinueOnTrail(s)},
		{ID: FormCheckSupplies, Kind: state.KindForm, Mode: ModeTravel, New: newCheckSupplies(s)},
		{ID: FormLookAtMap, Kind: state.KindForm, Mode: ModeTravel, New: newLookAtMap(s)},
		{ID: FormChangePace, Kind: state.KindForm, Mode: ModeTravel, Window: WinTrail, New: newChangePace(s)},
		{ID: FormChangeRations, Kind: state.KindForm, Mode: ModeTravel, Window: WinTrail, New: newChangeRations(s)},
		{ID: FormRestAmount, Kind: state.KindForm, Mode: ModeTravel, Window: WinCamp, New: newRestAmount(s)},
		{ID: FormResting, Kind: state.KindForm, Mode: ModeTravel, Window: WinCamp, New: newResting(s)},

		{ID: ModeStore, Kind: state.KindMode, Root: WinCounter,
			Data: func() any { return &storeInfo{} }, New: newStore(s)},
		{ID: WinCounter, Kind: state.KindWindow, Mode: ModeStore, New: state.Blank},
		{ID: FormBuyQuantity, Kind: state.KindForm, Mode: ModeStore, Window: WinCounter, New: newBuyQuantity(s)},

		{ID: ModeRandomEvent, Kind: state.KindMode, Root: WinNotice, New: newRandomEvent(s)},
		{ID: WinNotice, Kind: state.KindWindow, Mode: ModeRandomEvent, New: state.Blank},

		{ID: ModeLandmark, Kind: state.KindMode, Root: WinArrival, New: newLandmark(s)},
		{ID: WinArrival, Kind: state.KindWindow, Mode: ModeLandmark, New: state.Blank},

		{ID: ModeGameOver, Kind: state.KindMode, Root: WinFinal,
			Data: func() any { return &finalInfo{} }, New: newGameOver(s)},
		{ID: WinFinal, Kind: state.KindWindow, Mode: ModeGameOver, New: state.Blank},
		{ID: FormFinalScore, Kind: state.KindForm, Mode: ModeGameOver, Window: WinFinal, New: newFinalScore},
	}
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
