package physics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/lut"
)

// Motor is a solid rocket motor described by a RASP thrust curve.
type Motor struct {
	Designation  string
	Manufacturer string
	Diameter     float64 // m
	Length       float64 // m
	Delays       string
	PropMass     float64 // kg
	TotalMass    float64 // kg
	BurnTime     float64 // s

	thrust *lut.Table1
}

// SampleEng is a small I-class thrust curve used by the built-in rocket
// scenario.
const SampleEng = `; sample I-class motor for demonstration runs
I280 38 250 6-10-14 0.196 0.384 DEMO
0.02 120.0
0.05 300.0
0.10 330.0
0.30 320.0
0.60 300.0
0.90 270.0
1.10 240.0
1.25 120.0
1.35 0.0
;
`

// ParseEng reads a motor in RASP .eng format. Only the first motor in the
// input is read.
func ParseEng(r io.Reader) (*Motor, error) {
	sc := bufio.NewScanner(r)
	var (
		m      *Motor
		times  []float64
		thrust []float64
		line   int
	)

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ";") {
			if m != nil && len(times) > 0 {
				break
			}
			continue
		}

		fields := strings.Fields(text)
		if m == nil {
			hdr, err := parseEngHeader(fields)
			if err != nil {
				return nil, fmt.Errorf("eng line %d: %w", line, err)
			}
			m = hdr
			continue
		}

		if len(fields) != 2 {
			return nil, fmt.Errorf("eng line %d: want time and thrust, got %q: %w", line, text, dynamo.ErrInvalidConfig)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("eng line %d: %w", line, err)
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("eng line %d: %w", line, err)
		}
		times = append(times, t)
		thrust = append(thrust, f)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m == nil || len(times) == 0 {
		return nil, fmt.Errorf("eng: no thrust curve found: %w", dynamo.ErrInvalidConfig)
	}

	if times[0] > 0 {
		times = append([]float64{0}, times...)
		thrust = append([]float64{0}, thrust...)
	}
	table, err := lut.NewTable1(times, thrust, lut.Clamp)
	if err != nil {
		return nil, fmt.Errorf("eng thrust curve for %s: %w", m.Designation, err)
	}
	m.thrust = table
	m.BurnTime = times[len(times)-1]
	return m, nil
}

func parseEngHeader(fields []string) (*Motor, error) {
	if len(fields) < 7 {
		return nil, fmt.Errorf("header needs 7 fields, got %d: %w", len(fields), dynamo.ErrInvalidConfig)
	}
	nums := make([]float64, 0, 4)
	for _, idx := range []int{1, 2, 4, 5} {
		v, err := strconv.ParseFloat(fields[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("header field %d: %w", idx+1, err)
		}
		nums = append(nums, v)
	}
	m := &Motor{
		Designation:  fields[0],
		Diameter:     nums[0] / 1000,
		Length:       nums[1] / 1000,
		Delays:       fields[3],
		PropMass:     nums[2],
		TotalMass:    nums[3],
		Manufacturer: strings.Join(fields[6:], " "),
	}
	if m.PropMass < 0 || m.TotalMass < m.PropMass {
		return nil, fmt.Errorf("motor %s: propellant %g kg exceeds total %g kg: %w",
			m.Designation, m.PropMass, m.TotalMass, dynamo.ErrInvalidConfig)
	}
	return m, nil
}

// LoadEng reads a motor from a .eng file.
func LoadEng(path string) (*Motor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseEng(f)
}

// SampleMotor returns the motor described by SampleEng.
func SampleMotor() *Motor {
	m, err := ParseEng(strings.NewReader(SampleEng))
	if err != nil {
		panic(err)
	}
	return m
}

// Thrust returns the thrust in N at time t after ignition. It is zero before
// ignition and after burnout.
func (m *Motor) Thrust(t float64) float64 {
	if t < 0 || t > m.BurnTime {
		return 0
	}
	return m.thrust.At(t)
}

// Mass returns the motor mass at time t, burning propellant linearly over
// the burn time.
func (m *Motor) Mass(t float64) float64 {
	frac := 0.0
	if m.BurnTime > 0 {
		frac = min(max(t/m.BurnTime, 0), 1)
	}
	return m.TotalMass - m.PropMass*frac
}

// TotalImpulse integrates the thrust curve with the trapezoid rule.
func (m *Motor) TotalImpulse() float64 {
	const n = 1000
	h := m.BurnTime / n
	sum := 0.5 * (m.Thrust(0) + m.Thrust(m.BurnTime))
	for i := 1; i < n; i++ {
		sum += m.Thrust(float64(i) * h)
	}
	return sum * h
}
