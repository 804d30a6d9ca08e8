// Package session описывает явный конечный автомат диалога с пользователем.
package session

import (
	"errors"
	"fmt"
)

type State int

const (
	AwaitingChoice State = iota
	AwaitingReceipt
	AwaitingPayment
	Resolved
)

func (s State) String() string {
	switch s {
	case AwaitingChoice:
		return "awaiting_choice"
	case AwaitingReceipt:
		return "awaiting_receipt"
	case AwaitingPayment:
		return "awaiting_payment"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Event int

const (
	Start Event = iota
	ChooseManual
	ChoosePlan
	UploadReceipt
	PaymentSucceeded
	Approved
	Disapproved
)

func (e Event) String() string {
	switch e {
	case Start:
		return "start"
	case ChooseManual:
		return "choose_manual"
	case ChoosePlan:
		return "choose_plan"
	case UploadReceipt:
		return "upload_receipt"
	case PaymentSucceeded:
		return "payment_succeeded"
	case Approved:
		return "approved"
	case Disapproved:
		return "disapproved"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

var ErrInvalidTransition = errors.New("invalid session transition")

// choosing - состояния, из которых пользователь может снова выбрать способ оплаты
var choosing = []State{AwaitingChoice, AwaitingReceipt, AwaitingPayment}

var transitions = map[Event]struct {
	from []State
	to   State
}{
	ChooseManual:     {from: choosing, to: AwaitingReceipt},
	ChoosePlan:       {from: choosing, to: AwaitingPayment},
	PaymentSucceeded: {from: []State{AwaitingPayment, Resolved}, to: Resolved},
}

// Next возвращает состояние после события или ErrInvalidTransition.
// Start, загрузка чека и решения администратора допустимы из любого состояния.
func Next(from State, event Event) (State, error) {
	switch event {
	case Start:
		return AwaitingChoice, nil
	case UploadReceipt:
		return AwaitingReceipt, nil
	case Approved, Disapproved:
		return Resolved, nil
	}

	rule, ok := transitions[event]
	if !ok {
		return from, fmt.Errorf("%w: unknown event %s", ErrInvalidTransition, event)
	}
	for _, s := range rule.from {
		if s == from {
			return rule.to, nil
		}
	}
	return from, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, from)
}
