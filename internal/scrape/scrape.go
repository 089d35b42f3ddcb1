package scrape

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/model"
)

// ErrBadMarkup means the page was fetched but does not contain the expected
// schedule table. Retrying cannot fix malformed markup, so callers must not.
var ErrBadMarkup = errors.New("scrape: source markup does not match expected table shape")

// Source header labels mapped to canonical prayer names.
var prayerHeaderMap = map[string]string{
	"Тонг (Саҳарлик)": model.Bomdod,
	"Қуёш":            model.Quyosh,
	"Пешин":           model.Peshin,
	"Аср":             model.Asr,
	"Шом (Ифтор)":     model.Shom,
	"Хуфтон":          model.Xufton,
}

// Cells before the first prayer column: day number, month, weekday.
const leadingCells = 3

// minColumns is the parse-shape floor: 3 leading cells plus 6 prayers.
const minColumns = leadingCells + 6

var timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Adapter fetches and parses prayer schedule pages. It is a pure
// fetch-and-parse component; caching is the caller's responsibility.
type Adapter struct {
	baseURL  string
	attempts int
	backoff  time.Duration
	now      func() time.Time
}

func New(baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = config.SourceBaseURL
	}
	return &Adapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		attempts: 3,
		backoff:  500 * time.Millisecond,
		now:      time.Now,
	}
}

// page is the raw extraction of one schedule document.
type page struct {
	headers    []string
	rows       [][]string
	rowClasses []string
}

func (a *Adapter) url(region string, month int) string {
	return fmt.Sprintf("%s/vaqtlar/%s/%d", a.baseURL, region, month)
}

// fetchPage downloads and extracts the table once. Transport errors are
// returned as-is so the retry loop can distinguish them from ErrBadMarkup.
func (a *Adapter) fetchPage(url string) (*page, error) {
	p := &page{}
	var visitErr error

	c := colly.NewCollector(
		colly.UserAgent("muazzin-bot/1.0"),
	)
	c.SetRequestTimeout(15 * time.Second)

	c.OnHTML("th.header_table", func(e *colly.HTMLElement) {
		p.headers = append(p.headers, normalizeSpace(e.Text))
	})
	c.OnHTML("tr", func(e *colly.HTMLElement) {
		var cells []string
		e.ForEach("td", func(_ int, td *colly.HTMLElement) {
			cells = append(cells, normalizeSpace(td.Text))
		})
		if len(cells) == 0 {
			return
		}
		p.rows = append(p.rows, cells)
		p.rowClasses = append(p.rowClasses, e.Attr("class"))
	})
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}
	if visitErr != nil {
		return nil, visitErr
	}
	return p, nil
}

// fetch runs fetchPage with bounded exponential backoff. Only transport
// errors are retried; a successfully fetched page goes straight to parsing.
func (a *Adapter) fetch(ctx context.Context, url string) (*page, error) {
	var lastErr error
	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			delay := a.backoff << (attempt - 1)
			log.Warn().Err(lastErr).Str("url", url).Dur("delay", delay).Msg("scrape retry")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		p, err := a.fetchPage(url)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("scrape: %s: %w", url, lastErr)
}

// FetchDay fetches one day's schedule. daySelector is one of
// model.DayYesterday/DayToday/DayTomorrow and selects the row the source
// marks with the matching "p_day" class.
func (a *Adapter) FetchDay(ctx context.Context, region string, month int, daySelector string) (*model.PrayerSchedule, error) {
	p, err := a.fetch(ctx, a.url(region, month))
	if err != nil {
		return nil, err
	}

	var cells []string
	for i, class := range p.rowClasses {
		if strings.Contains(class, "p_day") && strings.Contains(class, daySelector) {
			cells = p.rows[i]
			break
		}
	}
	if cells == nil || len(p.headers) < minColumns || len(cells) < minColumns {
		return nil, ErrBadMarkup
	}

	date := a.now()
	switch daySelector {
	case model.DayYesterday:
		date = date.AddDate(0, 0, -1)
	case model.DayTomorrow:
		date = date.AddDate(0, 0, 1)
	}

	return buildSchedule(region, date.Format("2006-01-02"), p.headers, cells), nil
}

// FetchMonth fetches every day of the month in one request, for the monthly
// cache job.
func (a *Adapter) FetchMonth(ctx context.Context, region string, year, month int) ([]model.PrayerSchedule, error) {
	p, err := a.fetch(ctx, a.url(region, month))
	if err != nil {
		return nil, err
	}
	if len(p.headers) < minColumns {
		return nil, ErrBadMarkup
	}

	var days []model.PrayerSchedule
	for _, cells := range p.rows {
		if len(cells) < minColumns {
			continue
		}
		day, err := strconv.Atoi(cells[0])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		days = append(days, *buildSchedule(region, date, p.headers, cells))
	}
	if len(days) == 0 {
		return nil, ErrBadMarkup
	}
	return days, nil
}

// buildSchedule pairs prayer headers with time cells. Unmapped headers and
// unparseable cells resolve to the N/A sentinel, never an error.
func buildSchedule(region, date string, headers, cells []string) *model.PrayerSchedule {
	times := make(map[string]string, len(model.PrayerOrder))
	for _, name := range model.PrayerOrder {
		times[name] = model.TimeUnknown
	}
	for i := leadingCells; i < len(headers) && i < len(cells); i++ {
		name, ok := prayerHeaderMap[headers[i]]
		if !ok {
			continue
		}
		times[name] = normalizeTime(cells[i])
	}

	weekday := ""
	if len(cells) > 2 {
		weekday = cells[2]
	}
	return &model.PrayerSchedule{
		Region:       region,
		Date:         date,
		LocationName: config.RegionName(region),
		WeekdayName:  weekday,
		Times:        times,
	}
}

// normalizeTime zero-pads "H:MM" to "HH:MM" so lexical comparison stays
// valid; anything else becomes N/A.
func normalizeTime(raw string) string {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return model.TimeUnknown
	}
	hour, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", hour, m[2])
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
