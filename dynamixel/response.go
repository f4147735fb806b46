package dynamixel

// Response is the logical result of a single status packet: the id of
// the motor that replied, its hardware alert bit, and the decoded
// payload.
type Response[T any] struct {
	MotorID uint8
	Alert   bool
	Data    T
}
