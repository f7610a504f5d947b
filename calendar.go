package board

import (
	"time"

	"github.com/pkg/errors"

	"fahrplan.dev/board/model"
	"fahrplan.dev/board/parse"
	"fahrplan.dev/board/storage"
)

// ServiceIndex maps service ids to their calendars. It is built once
// when a Timetable opens and never written afterwards, so it can be
// shared across any number of concurrent readers.
type ServiceIndex map[int]*model.Service

// BuildServiceIndex groups the flat service/exception join into
// Service values. Exceptions append in row order, so a later
// duplicate date overrides an earlier one.
func BuildServiceIndex(rows []storage.ServiceRow) (ServiceIndex, error) {
	idx := ServiceIndex{}

	for _, row := range rows {
		svc, found := idx[row.ServiceID]
		if !found {
			start, err := parse.Date(row.StartDate)
			if err != nil {
				return nil, errors.Wrapf(err, "service %d start_date", row.ServiceID)
			}
			end, err := parse.Date(row.EndDate)
			if err != nil {
				return nil, errors.Wrapf(err, "service %d end_date", row.ServiceID)
			}

			svc = &model.Service{
				ID:      row.ServiceID,
				Start:   start,
				End:     end,
				Weekday: weekdayMask(row.Weekday),
			}
			idx[row.ServiceID] = svc
		}

		if row.Exception != nil {
			date, err := parse.Date(row.Exception.Date)
			if err != nil {
				return nil, errors.Wrapf(err, "service %d exception date", row.ServiceID)
			}
			svc.Exceptions = append(svc.Exceptions, model.ServiceException{
				Date: date,
				Type: model.ExceptionType(row.Exception.Type),
			})
		}
	}

	return idx, nil
}

// Raw flags arrive Monday first, time.Weekday counts from Sunday.
var weekdayOrder = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

func weekdayMask(flags [7]bool) int8 {
	var mask int8
	for i, set := range flags {
		if set {
			mask |= 1 << weekdayOrder[i]
		}
	}
	return mask
}
