package dialogue

import (
	"github.com/looplab/fsm"

	"roofbot/internal/models"
)

const (
	evNext            = "next"
	evSkipDetails     = "skip_details"
	evBack            = "back"
	evBackSkipDetails = "back_skip_details"
	evStart           = "start"
)

func transition(name string, from, to models.State) fsm.EventDesc {
	return fsm.EventDesc{Name: name, Src: []string{from.String()}, Dst: to.String()}
}

// NewFSM builds the transition table of one conversation, starting uninitialized.
func NewFSM() *fsm.FSM {
	events := fsm.Events{
		transition(evNext, models.StateCategory, models.StateCity),
		transition(evNext, models.StateCity, models.StateDistrict),
		transition(evNext, models.StateDistrict, models.StateDays),
		transition(evNext, models.StateDays, models.StateDetails),
		transition(evNext, models.StateDetails, models.StateConfirm),
		transition(evSkipDetails, models.StateDays, models.StateConfirm),

		transition(evBack, models.StateCity, models.StateCategory),
		transition(evBack, models.StateDistrict, models.StateCity),
		transition(evBack, models.StateDays, models.StateDistrict),
		transition(evBack, models.StateDetails, models.StateDays),
		transition(evBack, models.StateConfirm, models.StateDetails),
		transition(evBackSkipDetails, models.StateConfirm, models.StateDays),

		{
			Name: evStart,
			Src: []string{
				models.StateUninitialized.String(),
				models.StateCity.String(),
				models.StateDistrict.String(),
				models.StateDays.String(),
				models.StateDetails.String(),
				models.StateConfirm.String(),
			},
			Dst: models.StateCategory.String(),
		},
	}
	return fsm.NewFSM(models.StateUninitialized.String(), events, nil)
}
