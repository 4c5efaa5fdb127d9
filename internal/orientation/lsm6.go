package orientation

import (
	"time"

	"lidarlog/internal/i2c"
	"lidarlog/internal/sensors/lsm6ds33"
)

// LSM6 reads an LSM6DS33 on an I2C device. Wait, when set, replaces
// time.Sleep for the configuration delay.
type LSM6 struct {
	Dev  *i2c.Dev
	Wait func(time.Duration)

	d *lsm6ds33.Device
}

func (l *LSM6) Init() error {
	d, err := lsm6ds33.New(l.Dev, l.Wait)
	if err != nil {
		return err
	}
	l.d = d
	return nil
}

func (l *LSM6) ReadRaw() (Raw, error) {
	r, err := l.d.Read()
	if err != nil {
		return Raw{}, err
	}
	return Raw{Ax: r.Ax, Ay: r.Ay, Az: r.Az, Gx: r.Gx, Gy: r.Gy, Gz: r.Gz}, nil
}
