package board

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"fahrplan.dev/board/model"
	"fahrplan.dev/board/parse"
	"fahrplan.dev/board/storage"
)

// assembleBoard turns raw stop event rows into a displayable board:
// events of services running on their computed service day, at or
// after the reference moment, ascending by adjusted time. Ties keep
// the order the rows arrived in.
func assembleBoard(
	rows []storage.StopEventRow,
	at time.Time,
	bt model.BoardType,
	services ServiceIndex,
) ([]model.Entry, error) {

	entries := []model.Entry{}

	for _, row := range rows {
		ev, err := mapStopEvent(row)
		if err != nil {
			return nil, err
		}

		svc, found := services[ev.ServiceID]
		if !found {
			return nil, &UnknownServiceError{TripID: ev.TripID, ServiceID: ev.ServiceID}
		}

		offset := ev.Offset(bt)

		if !svc.IsAvailable(serviceDay(at, offset)) {
			continue
		}

		when := adjustedTime(at, offset)
		if when.Before(at) {
			continue
		}

		entries = append(entries, model.Entry{
			TripID:    ev.TripID,
			ServiceID: ev.ServiceID,
			ShortName: ev.ShortName,
			Headsign:  ev.Headsign,
			When:      when,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].When.Before(entries[j].When)
	})

	return entries, nil
}

func mapStopEvent(row storage.StopEventRow) (model.StopEvent, error) {
	arrival, err := parse.Offset(row.ArrivalTime)
	if err != nil {
		return model.StopEvent{}, errors.Wrapf(err, "trip '%s' arrival_time", row.TripID)
	}

	departure, err := parse.Offset(row.DepartureTime)
	if err != nil {
		return model.StopEvent{}, errors.Wrapf(err, "trip '%s' departure_time", row.TripID)
	}

	return model.StopEvent{
		TripID:    row.TripID,
		ServiceID: row.ServiceID,
		Arrival:   arrival,
		Departure: departure,
		ShortName: row.ShortName,
		Headsign:  row.Headsign,
	}, nil
}
