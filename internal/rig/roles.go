package rig

// Role is a canonical skeletal joint role.
type Role string

// Canonical roles. There is deliberately no knee role; no motion drives legs.
const (
	Hips          Role = "hips"
	Spine         Role = "spine"
	Neck          Role = "neck"
	Head          Role = "head"
	LeftEye       Role = "left-eye"
	RightEye      Role = "right-eye"
	Jaw           Role = "jaw"
	LeftShoulder  Role = "left-shoulder"
	RightShoulder Role = "right-shoulder"
	LeftUpperArm  Role = "left-upper-arm"
	RightUpperArm Role = "right-upper-arm"
	LeftForearm   Role = "left-forearm"
	RightForearm  Role = "right-forearm"
	LeftHand      Role = "left-hand"
	RightHand     Role = "right-hand"
)

// aliases lists, per role, the accepted joint names in priority order.
// Exact entries are compared case-insensitively against the full name and
// against the name with any "namespace:" or "namespace|" prefix removed.
// Contains entries are substring fallbacks tried only after every exact
// entry has missed, and Suffix entries must end the name. Differently
// authored rigs depend on this exact list.
type aliases struct {
	Exact    []string
	Contains []string
	Suffix   []string
}

var roleAliases = map[Role]aliases{
	Hips: {
		Exact:    []string{"Hips", "Pelvis", "b_hips", "J_Bip_C_Hips", "hip"},
		Contains: []string{"hips", "pelvis"},
	},
	Spine: {
		Exact:    []string{"Spine2", "Spine1", "Spine", "Chest", "UpperChest", "b_spine", "J_Bip_C_Chest", "J_Bip_C_Spine"},
		Contains: []string{"spine", "chest"},
	},
	Neck: {
		Exact:    []string{"Neck", "b_neck", "J_Bip_C_Neck"},
		Contains: []string{"neck"},
	},
	Head: {
		Exact:    []string{"Head", "b_head", "J_Bip_C_Head"},
		Contains: []string{"head"},
	},
	LeftEye: {
		Exact:    []string{"LeftEye", "Eye_L", "Eye.L", "L_Eye", "b_eye_l", "J_Adj_L_FaceEye"},
		Contains: []string{"lefteye", "eye.l", "l_eye"},
		Suffix:   []string{"eye_l"},
	},
	RightEye: {
		Exact:    []string{"RightEye", "Eye_R", "Eye.R", "R_Eye", "b_eye_r", "J_Adj_R_FaceEye"},
		Contains: []string{"righteye", "eye.r", "r_eye"},
		Suffix:   []string{"eye_r"},
	},
	Jaw: {
		Exact:    []string{"Jaw", "b_jaw", "J_Bip_C_Jaw", "JawRoot"},
		Contains: []string{"jaw"},
	},
	LeftShoulder: {
		Exact:    []string{"LeftShoulder", "Shoulder_L", "Shoulder.L", "L_Shoulder", "Clavicle_L", "J_Bip_L_Shoulder"},
		Contains: []string{"leftshoulder", "shoulder_l", "clavicle_l"},
	},
	RightShoulder: {
		Exact:    []string{"RightShoulder", "Shoulder_R", "Shoulder.R", "R_Shoulder", "Clavicle_R", "J_Bip_R_Shoulder"},
		Contains: []string{"rightshoulder", "shoulder_r", "clavicle_r"},
	},
	LeftUpperArm: {
		Exact:    []string{"LeftArm", "LeftUpperArm", "UpperArm_L", "UpperArm.L", "L_UpperArm", "J_Bip_L_UpperArm"},
		Contains: []string{"leftupperarm", "upperarm_l", "upperarm.l", "l_upperarm"},
	},
	RightUpperArm: {
		Exact:    []string{"RightArm", "RightUpperArm", "UpperArm_R", "UpperArm.R", "R_UpperArm", "J_Bip_R_UpperArm"},
		Contains: []string{"rightupperarm", "upperarm_r", "upperarm.r", "r_upperarm"},
	},
	LeftForearm: {
		Exact:    []string{"LeftForeArm", "LeftLowerArm", "Forearm_L", "Forearm.L", "LowerArm_L", "J_Bip_L_LowerArm"},
		Contains: []string{"leftforearm", "forearm_l", "lowerarm_l", "forearm.l"},
	},
	RightForearm: {
		Exact:    []string{"RightForeArm", "RightLowerArm", "Forearm_R", "Forearm.R", "LowerArm_R", "J_Bip_R_LowerArm"},
		Contains: []string{"rightforearm", "forearm_r", "lowerarm_r", "forearm.r"},
	},
	LeftHand: {
		Exact:    []string{"LeftHand", "Hand_L", "Hand.L", "L_Hand", "J_Bip_L_Hand"},
		Contains: []string{"lefthand", "hand_l", "hand.l"},
	},
	RightHand: {
		Exact:    []string{"RightHand", "Hand_R", "Hand.R", "R_Hand", "J_Bip_R_Hand"},
		Contains: []string{"righthand", "hand_r", "hand.r"},
	},
}

// Roles returns every canonical role in a stable order.
func Roles() []Role {
	return []Role{
		Hips, Spine, Neck, Head, LeftEye, RightEye, Jaw,
		LeftShoulder, RightShoulder, LeftUpperArm, RightUpperArm,
		LeftForearm, RightForearm, LeftHand, RightHand,
	}
}

// Variants returns the exact-name variants accepted for role.
func Variants(role Role) []string {
	return roleAliases[role].Exact
}

// Canonical morph channel names. Channel lookups by these names fall back
// to the alias list below when the rig has no channel with the exact name.
const (
	ChannelBlink   = "eyeBlink"
	ChannelJawOpen = "jawOpen"
	ChannelSmile   = "mouthSmile"
	ChannelSmirk   = "mouthSmirk"
)

var channelAliases = map[string][]string{
	ChannelBlink:   {"eyeBlink", "blink", "Blink", "eyesClosed", "Fcl_EYE_Close", "eyeBlinkLeft", "eyeBlink_L"},
	ChannelJawOpen: {"jawOpen", "mouthOpen", "viseme_aa", "Fcl_MTH_A", "A", "aa"},
	ChannelSmile:   {"mouthSmile", "smile", "Smile", "Fcl_MTH_Joy", "mouthSmileLeft", "mouthSmile_L", "Joy"},
	ChannelSmirk:   {"mouthSmirk", "smirk", "mouthSmileRight", "mouthSmile_R"},
}

// Visemes lists the mouth-shape channels a speech loop drives.
var Visemes = []string{"viseme_aa", "viseme_O", "viseme_E", "viseme_I", "viseme_U"}

// FacePrefixes lists the name prefixes treated as facial channels when
// zeroing a face back to neutral.
var FacePrefixes = []string{"eye", "blink", "jaw", "mouth", "viseme", "smile", "smirk", "brow", "cheek", "fcl_"}
