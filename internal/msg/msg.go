// Package msg defines the velocity command messages delivered to the
// controller by the command transport.
package msg

// RadianPerSecond is the unit identifier expected on velocity values.
const RadianPerSecond = "rad/s"

// JointValue carries one scalar value for one named joint.
type JointValue struct {
	JointURI string  `json:"joint_uri" yaml:"joint_uri"`
	Unit     string  `json:"unit" yaml:"unit"`
	Value    float64 `json:"value" yaml:"value"`
}

// JointVelocities is one velocity command. It may name any subset of the
// controlled joints, in any order. An empty command means stop/reset,
// not "no targets".
type JointVelocities struct {
	Velocities []JointValue `json:"velocities" yaml:"velocities"`
}

func (jv JointVelocities) Empty() bool { return len(jv.Velocities) == 0 }

// Velocity builds a single-joint velocity command in rad/s.
func Velocity(jointURI string, value float64) JointValue {
	return JointValue{JointURI: jointURI, Unit: RadianPerSecond, Value: value}
}
