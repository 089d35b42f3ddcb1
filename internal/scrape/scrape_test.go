package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashware/muazzin/internal/model"
)

const fixturePage = `<html><body><table>
<tr>
  <th class="header_table">Кун</th>
  <th class="header_table">март</th>
  <th class="header_table">Ҳафта куни</th>
  <th class="header_table">Тонг (Саҳарлик)</th>
  <th class="header_table">Қуёш</th>
  <th class="header_table">Пешин</th>
  <th class="header_table">Аср</th>
  <th class="header_table">Шом (Ифтор)</th>
  <th class="header_table">Хуфтон</th>
</tr>
<tr class="p_day kecha"><td>14</td><td>3</td><td>Juma</td><td>05:26</td><td>06:44</td><td>12:23</td><td>16:19</td><td>18:06</td><td>19:21</td></tr>
<tr class="p_day bugun"><td>15</td><td>3</td><td>Shanba</td><td>05:24</td><td>06:42</td><td>12:23</td><td>16:20</td><td>18:07</td><td>19:22</td></tr>
<tr class="p_day erta"><td>16</td><td>3</td><td>Yakshanba</td><td>5:22</td><td>06:40</td><td>12:22</td><td>16:21</td><td>18:08</td><td>--</td></tr>
</table></body></html>`

func testAdapter(url string) *Adapter {
	a := New(url)
	a.backoff = time.Millisecond
	a.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local) }
	return a
}

func TestFetchDayParsesMarkedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	sched, err := testAdapter(srv.URL).FetchDay(context.Background(), "27", 3, model.DayToday)
	require.NoError(t, err)

	assert.Equal(t, "27", sched.Region)
	assert.Equal(t, "2025-03-15", sched.Date)
	assert.Equal(t, "Toshkent", sched.LocationName)
	assert.Equal(t, "Shanba", sched.WeekdayName)
	assert.Equal(t, "05:24", sched.Time(model.Bomdod))
	assert.Equal(t, "19:22", sched.Time(model.Xufton))
}

func TestFetchDayNormalizesCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	sched, err := testAdapter(srv.URL).FetchDay(context.Background(), "27", 3, model.DayTomorrow)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-16", sched.Date)
	// "5:22" is zero-padded so lexical comparison stays valid.
	assert.Equal(t, "05:22", sched.Time(model.Bomdod))
	// "--" is not a time; it resolves to the sentinel, not an error.
	assert.Equal(t, model.TimeUnknown, sched.Time(model.Xufton))
}

func TestFetchMonthCollectsEveryDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	days, err := testAdapter(srv.URL).FetchMonth(context.Background(), "27", 2025, 3)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2025-03-14", days[0].Date)
	assert.Equal(t, "2025-03-16", days[2].Date)
	assert.Equal(t, "06:42", days[1].Time(model.Quyosh))
}

func TestBadMarkupIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
	}))
	defer srv.Close()

	_, err := testAdapter(srv.URL).FetchDay(context.Background(), "27", 3, model.DayToday)
	assert.True(t, errors.Is(err, ErrBadMarkup))
	assert.Equal(t, int32(1), requests.Load())
}

func TestTransientErrorIsRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	sched, err := testAdapter(srv.URL).FetchDay(context.Background(), "27", 3, model.DayToday)
	require.NoError(t, err)
	assert.Equal(t, "05:24", sched.Time(model.Bomdod))
	assert.Equal(t, int32(3), requests.Load())
}

func TestRetriesAreBounded(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testAdapter(srv.URL).FetchDay(context.Background(), "27", 3, model.DayToday)
	assert.Error(t, err)
	assert.Equal(t, int32(3), requests.Load())
}
